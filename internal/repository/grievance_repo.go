package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civigo/grievance-backend/internal/models"
)

// GrievanceRepository is the persistence contract for grievance records.
// Mutations that touch existing records (PushChat, SetResolved) must be
// single-document atomic updates, never read-modify-write, so concurrent
// chat appends are not lost.
type GrievanceRepository interface {
	Insert(ctx context.Context, g *models.Grievance) (*models.Grievance, error)
	FindByID(ctx context.Context, id string) (*models.Grievance, error)
	FindByUser(ctx context.Context, userID string) ([]models.Grievance, error)
	FindAll(ctx context.Context) ([]models.Grievance, error)
	PushChat(ctx context.Context, id string, entry models.ChatEntry) (*models.Grievance, error)
	SetResolved(ctx context.Context, id string, at time.Time) (*models.Grievance, error)
}

const grievanceCollection = "grievances"

// MongoGrievanceRepository stores grievances in a MongoDB collection.
type MongoGrievanceRepository struct {
	db *mongo.Database
}

func NewMongoGrievanceRepository(db *mongo.Database) *MongoGrievanceRepository {
	return &MongoGrievanceRepository{db: db}
}

// EnsureIndexes configures the grievances collection indexes. Called on
// startup after Mongo has connected.
func (r *MongoGrievanceRepository) EnsureIndexes(ctx context.Context) error {
	col := r.db.Collection(grievanceCollection)

	// (userId, createdOn) supports the newest-first per-user listing.
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "createdOn", Value: -1},
		},
		Options: options.Index().SetName("idx_user_createdon"),
	})
	return err
}

func (r *MongoGrievanceRepository) Insert(ctx context.Context, g *models.Grievance) (*models.Grievance, error) {
	if g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	if _, err := r.db.Collection(grievanceCollection).InsertOne(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (r *MongoGrievanceRepository) FindByID(ctx context.Context, id string) (*models.Grievance, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var g models.Grievance
	err = r.db.Collection(grievanceCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *MongoGrievanceRepository) FindByUser(ctx context.Context, userID string) ([]models.Grievance, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *MongoGrievanceRepository) FindAll(ctx context.Context) ([]models.Grievance, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoGrievanceRepository) find(ctx context.Context, filter bson.M) ([]models.Grievance, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdOn", Value: -1}})

	cur, err := r.db.Collection(grievanceCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	grievances := []models.Grievance{}
	if err := cur.All(ctx, &grievances); err != nil {
		return nil, err
	}
	return grievances, nil
}

// PushChat appends one entry to the chat array with Mongo's atomic
// $push; the store's array-append ordering is the only guarantee between
// concurrent callers.
func (r *MongoGrievanceRepository) PushChat(ctx context.Context, id string, entry models.ChatEntry) (*models.Grievance, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{"$push": bson.M{"chats": entry}})
}

// SetResolved flips status to Resolved and stamps resolvedOn in a single
// atomic update.
func (r *MongoGrievanceRepository) SetResolved(ctx context.Context, id string, at time.Time) (*models.Grievance, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{"$set": bson.M{
		"status":     models.StatusResolved,
		"resolvedOn": at,
	}})
}

func (r *MongoGrievanceRepository) findOneAndUpdate(ctx context.Context, id string, update bson.M) (*models.Grievance, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var g models.Grievance
	err = r.db.Collection(grievanceCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).
		Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}
