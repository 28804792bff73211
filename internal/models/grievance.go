package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Grievance status values. "Pending" predates the two-state transition
// model and still appears in seeded records; it is accepted on read but
// never produced by the create path.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In progress"
	StatusResolved   = "Resolved"
)

// AIAnalysis is the structured classification attached once at creation
// time and never recomputed.
type AIAnalysis struct {
	Summary    string `bson:"summary" json:"summary"`
	Department string `bson:"department" json:"department"`
	Priority   string `bson:"priority" json:"priority"`   // High, Medium, Low
	Sentiment  string `bson:"sentiment" json:"sentiment"` // Negative, Neutral, Positive
	Category   string `bson:"category" json:"category"`
}

// Grievance is the central record. Submission fields are immutable after
// creation; UserID is authoritative for ownership checks and is never
// taken from client input.
type Grievance struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"_id"`

	Name        string `bson:"name" json:"name"`
	WardNo      string `bson:"wardno" json:"wardno"`
	PhoneNo     string `bson:"phoneno" json:"phoneno"`
	AreaLimit   string `bson:"arealimit,omitempty" json:"arealimit,omitempty"`
	Subject     string `bson:"subject" json:"subject"`
	Department  string `bson:"department" json:"department"`
	Address     string `bson:"address" json:"address"`
	Description string `bson:"description" json:"description"`

	UserID    string `bson:"userId" json:"userId"`
	CreatedBy string `bson:"createdBy" json:"createdBy"`

	Chats      []ChatEntry `bson:"chats" json:"chats"`
	AIAnalysis *AIAnalysis `bson:"aiAnalysis,omitempty" json:"aiAnalysis,omitempty"`

	Status     string     `bson:"status" json:"status"`
	CreatedOn  time.Time  `bson:"createdOn" json:"createdOn"`
	ResolvedOn *time.Time `bson:"resolvedOn" json:"resolvedOn"`
}
