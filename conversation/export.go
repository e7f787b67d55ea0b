package conversation

import (
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/toolmesh/core"
	toml "github.com/pelletier/go-toml/v2"
)

const transcriptVersion = 1

type transcriptSchema struct {
	Version    int                `toml:"version"`
	SessionID  string             `toml:"session_id"`
	ExportedAt time.Time          `toml:"exported_at"`
	Messages   []transcriptRecord `toml:"messages"`
}

type transcriptRecord struct {
	Seq          uint64    `toml:"seq"`
	ID           string    `toml:"id"`
	Role         string    `toml:"role"`
	Content      string    `toml:"content"`
	CreatedAt    time.Time `toml:"created_at"`
	RelatedJobID string    `toml:"related_job_id,omitempty"`
	ArtifactID   string    `toml:"artifact_id,omitempty"`
	IsError      bool      `toml:"is_error,omitempty"`
}

// Transcript is a decoded TOML export.
type Transcript struct {
	SessionID  string
	ExportedAt time.Time
	Messages   []core.Message
}

// ExportTOML writes msgs as a versioned TOML transcript.
func ExportTOML(w io.Writer, sessionID string, msgs []core.Message) error {
	file := transcriptSchema{
		Version:    transcriptVersion,
		SessionID:  sessionID,
		ExportedAt: time.Now().UTC(),
		Messages:   make([]transcriptRecord, 0, len(msgs)),
	}
	for _, m := range msgs {
		file.Messages = append(file.Messages, transcriptRecord{
			Seq:          m.Seq,
			ID:           m.ID,
			Role:         string(m.Role),
			Content:      m.Content,
			CreatedAt:    m.CreatedAt,
			RelatedJobID: m.RelatedJobID,
			ArtifactID:   m.ArtifactID,
			IsError:      m.IsError,
		})
	}
	if err := toml.NewEncoder(w).Encode(file); err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	return nil
}

// ReadTOML decodes a transcript written by ExportTOML.
func ReadTOML(r io.Reader) (Transcript, error) {
	var file transcriptSchema
	if err := toml.NewDecoder(r).Decode(&file); err != nil {
		return Transcript{}, fmt.Errorf("decode transcript: %w", err)
	}
	if file.Version != transcriptVersion {
		return Transcript{}, fmt.Errorf("unsupported transcript version %d", file.Version)
	}
	out := Transcript{SessionID: file.SessionID, ExportedAt: file.ExportedAt, Messages: make([]core.Message, 0, len(file.Messages))}
	for _, rec := range file.Messages {
		out.Messages = append(out.Messages, core.Message{
			ID:           rec.ID,
			Seq:          rec.Seq,
			Role:         core.Role(rec.Role),
			Content:      rec.Content,
			CreatedAt:    rec.CreatedAt,
			RelatedJobID: rec.RelatedJobID,
			ArtifactID:   rec.ArtifactID,
			IsError:      rec.IsError,
		})
	}
	return out, nil
}
