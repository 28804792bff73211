// Command seed loads a demo citizen and sample grievances for local
// development, covering all three stored status values and a
// legacy-format chat entry.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/civigo/grievance-backend/internal/config"
	"github.com/civigo/grievance-backend/internal/database"
	"github.com/civigo/grievance-backend/internal/models"
	"github.com/civigo/grievance-backend/internal/repository"
	"github.com/civigo/grievance-backend/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	ctx := context.Background()

	log.Println("Cleaning up old demo data...")
	if _, err := database.PostgresDB.ExecContext(ctx, `DELETE FROM users WHERE email = $1`, "sharvesh@gmail.com"); err != nil {
		log.Fatal("Failed to clean up demo user:", err)
	}

	log.Println("Creating demo user sharvesh@gmail.com...")
	hashed, err := utils.HashPassword("password123")
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	now := time.Now()
	user := &models.User{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Name:      "Sharvesh",
		Email:     "sharvesh@gmail.com",
		Password:  hashed,
		Role:      models.RoleCitizen,
		Phone:     "9876543210",
	}

	userRepo := repository.NewPostgresUserRepository(database.PostgresDB)
	if err := userRepo.Create(ctx, user); err != nil {
		log.Fatal("Failed to create demo user:", err)
	}
	log.Printf("User created: %s", user.ID)

	log.Println("Creating sample grievances...")
	grievanceRepo := repository.NewMongoGrievanceRepository(database.DB)

	resolvedOn := now
	chatTS := now.Add(-time.Hour)
	samples := []models.Grievance{
		{
			Name:        "Sharvesh",
			WardNo:      "12",
			PhoneNo:     "9876543210",
			Subject:     "Street Light Malfunction",
			Department:  "Electrical",
			Address:     "123 Main St, Tech Park",
			Description: "The street light in front of my house has been flickering for a week.",
			UserID:      user.ID,
			CreatedBy:   "Sharvesh",
			Chats: []models.ChatEntry{
				{Sender: models.SenderUser, Message: "Any update on this?", Timestamp: &chatTS},
			},
			Status:    models.StatusInProgress,
			CreatedOn: now,
		},
		{
			Name:        "Sharvesh",
			WardNo:      "12",
			PhoneNo:     "9876543210",
			Subject:     "Garbage Collection Delayed",
			Department:  "Sanitation",
			Address:     "123 Main St, Tech Park",
			Description: "Garbage truck hasn't visited for 3 days.",
			UserID:      user.ID,
			CreatedBy:   "Sharvesh",
			Chats:       []models.ChatEntry{},
			Status:      models.StatusPending,
			CreatedOn:   now.Add(-24 * time.Hour),
		},
		{
			Name:        "Sharvesh",
			WardNo:      "12",
			PhoneNo:     "9876543210",
			Subject:     "Pothole on 4th Avenue",
			Department:  "Roads",
			Address:     "4th Avenue Junction",
			Description: "Deep pothole causing traffic slowdowns.",
			UserID:      user.ID,
			CreatedBy:   "Sharvesh",
			Chats:       []models.ChatEntry{},
			Status:      models.StatusResolved,
			CreatedOn:   now.Add(-48 * time.Hour),
			ResolvedOn:  &resolvedOn,
		},
	}

	for i := range samples {
		if _, err := grievanceRepo.Insert(ctx, &samples[i]); err != nil {
			log.Fatal("Failed to insert sample grievance:", err)
		}
	}

	// Append a bare-string chat entry to the first grievance so the
	// legacy shape is actually present in local data. The model layer
	// always writes the structured shape, so this goes through the
	// collection directly.
	_, err = database.DB.Collection("grievances").UpdateOne(ctx,
		bson.M{"_id": samples[0].ID},
		bson.M{"$push": bson.M{"chats": "[OFFICIAL]: An electrician has been assigned to your ward."}},
	)
	if err != nil {
		log.Fatal("Failed to append legacy chat entry:", err)
	}

	log.Println("Sample grievances added!")
}
