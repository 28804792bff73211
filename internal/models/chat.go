package models

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// legacyOfficialMarker prefixes bare-string chat entries written by
// officials before the structured message schema existed.
const legacyOfficialMarker = "[OFFICIAL]: "

// Chat sender labels inferred for legacy entries.
const (
	SenderOfficial = "Official"
	SenderUser     = "User"
)

// ChatEntry is one message in a grievance's chat thread. Two shapes
// coexist in stored records: a bare string (legacy) and the structured
// {sender, message, timestamp} document. Both are accepted on read, and
// no migration rewrites old records, so readers handle both
// indefinitely. Writes always produce the structured shape.
type ChatEntry struct {
	Sender    string     `bson:"sender" json:"sender"`
	Message   string     `bson:"message" json:"message"`
	Timestamp *time.Time `bson:"timestamp,omitempty" json:"timestamp,omitempty"`

	// LegacyText holds the original bare-string payload when the entry
	// was decoded from the legacy shape; empty for structured entries.
	LegacyText string `bson:"-" json:"-"`
}

// IsLegacy reports whether the entry was decoded from a bare string.
func (c ChatEntry) IsLegacy() bool {
	return c.LegacyText != ""
}

// Normalized returns the display form of the entry. Legacy entries have
// the official marker stripped and the sender inferred; structured
// entries pass through unchanged.
func (c ChatEntry) Normalized() ChatEntry {
	if !c.IsLegacy() {
		return c
	}
	if text, ok := strings.CutPrefix(c.LegacyText, legacyOfficialMarker); ok {
		return ChatEntry{Sender: SenderOfficial, Message: text, Timestamp: c.Timestamp}
	}
	return ChatEntry{Sender: SenderUser, Message: c.LegacyText, Timestamp: c.Timestamp}
}

// chatEntryDoc is the structured wire shape, without the custom
// marshalers attached so encoding recurses normally.
type chatEntryDoc struct {
	Sender    string     `bson:"sender" json:"sender"`
	Message   string     `bson:"message" json:"message"`
	Timestamp *time.Time `bson:"timestamp,omitempty" json:"timestamp,omitempty"`
}

// UnmarshalBSONValue accepts either shape from the store.
func (c *ChatEntry) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.String:
		rv := bson.RawValue{Type: t, Value: data}
		s, ok := rv.StringValueOK()
		if !ok {
			return errors.New("chat entry: malformed string value")
		}
		*c = ChatEntry{LegacyText: s}
		return nil
	case bsontype.EmbeddedDocument:
		var doc chatEntryDoc
		if err := bson.Unmarshal(data, &doc); err != nil {
			return err
		}
		*c = ChatEntry{Sender: doc.Sender, Message: doc.Message, Timestamp: doc.Timestamp}
		return nil
	default:
		return errors.New("chat entry: unsupported BSON type " + t.String())
	}
}

// MarshalBSONValue always writes the structured shape, normalizing any
// legacy entry on the way out.
func (c ChatEntry) MarshalBSONValue() (bsontype.Type, []byte, error) {
	n := c.Normalized()
	return bson.MarshalValue(chatEntryDoc{Sender: n.Sender, Message: n.Message, Timestamp: n.Timestamp})
}

// UnmarshalJSON accepts either shape from clients and stored-record
// passthrough.
func (c *ChatEntry) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = ChatEntry{LegacyText: s}
		return nil
	}
	var doc chatEntryDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*c = ChatEntry{Sender: doc.Sender, Message: doc.Message, Timestamp: doc.Timestamp}
	return nil
}

// MarshalJSON always renders the structured, normalized shape.
func (c ChatEntry) MarshalJSON() ([]byte, error) {
	n := c.Normalized()
	return json.Marshal(chatEntryDoc{Sender: n.Sender, Message: n.Message, Timestamp: n.Timestamp})
}
