package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/echoremedy/echoremedy-bot/internal/utils"
	"github.com/lib/pq"
)

// Urgency is a display-priority label, not a clinically derived score.
type Urgency string

const (
	UrgencyLow    Urgency = "Low"
	UrgencyMedium Urgency = "Medium"
	UrgencyHigh   Urgency = "High"
)

// Urgencies lists the tiers in ascending order.
var Urgencies = []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh}

// Valid reports whether u is one of the three tiers.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	default:
		return false
	}
}

// Badge returns the badge variant used when rendering the tier.
// Medium deliberately shares the default styling.
func (u Urgency) Badge() string {
	switch u {
	case UrgencyHigh:
		return "destructive"
	case UrgencyMedium:
		return "default"
	default:
		return "secondary"
	}
}

// ParseUrgency accepts a tier name in any letter case.
func ParseUrgency(s string) (Urgency, error) {
	for _, u := range Urgencies {
		if strings.EqualFold(string(u), strings.TrimSpace(s)) {
			return u, nil
		}
	}
	return "", fmt.Errorf("unknown urgency %q", s)
}

// Modality identifies which capture adapter produced an analysis input.
type Modality string

const (
	ModalityPhoto Modality = "photo"
	ModalityVoice Modality = "voice"
)

// AnalysisResult is immutable once produced by a selector.
// Urgency and SeekMedicalAttention are set independently by each template.
type AnalysisResult struct {
	Condition            string  `json:"condition"`
	Remedy               string  `json:"remedy"`
	Urgency              Urgency `json:"urgency"`
	Explanation          string  `json:"explanation"`
	SeekMedicalAttention bool    `json:"seekMedicalAttention"`
	ImageURL             string  `json:"imageUrl,omitempty"`
	VoiceInput           string  `json:"voiceInput,omitempty"`
}

// Modality reports the source of the result from whichever input field is set.
func (r AnalysisResult) Modality() Modality {
	if r.ImageURL != "" {
		return ModalityPhoto
	}
	return ModalityVoice
}

// HistoryEntry is an AnalysisResult stamped when it was recorded.
// ID is the creation time in Unix milliseconds.
type HistoryEntry struct {
	ID   int64  `json:"id"`
	Date string `json:"date"`
	AnalysisResult
}

// UrgencyStats counts history entries per tier.
type UrgencyStats struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// SessionUser is fabricated locally on sign in; its stored presence is the
// only signal that the owner is authenticated.
type SessionUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

// JournalEntry is a free-text health journal record owned by one user.
// A nil EffectivenessRating means unrated.
type JournalEntry struct {
	ID                  string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID              string    `gorm:"index;not null" json:"user_id"`
	Symptoms            string    `gorm:"type:text;not null" json:"symptoms"`
	MedicinesTaken      *string   `gorm:"type:text" json:"medicines_taken"`
	EffectivenessRating *int      `json:"effectiveness_rating"`
	Notes               *string   `gorm:"type:text" json:"notes"`
	EntryDate           time.Time `gorm:"type:date;not null;index" json:"entry_date"`
	CreatedAt           time.Time `json:"created_at"`
}

func (JournalEntry) TableName() string {
	return "journal_entries"
}

// journalJSON is JournalEntry on the wire, with entry_date as YYYY-MM-DD.
type journalJSON struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	Symptoms            string    `json:"symptoms"`
	MedicinesTaken      *string   `json:"medicines_taken"`
	EffectivenessRating *int      `json:"effectiveness_rating"`
	Notes               *string   `json:"notes"`
	EntryDate           string    `json:"entry_date"`
	CreatedAt           time.Time `json:"created_at"`
}

func (e JournalEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(journalJSON{
		ID:                  e.ID,
		UserID:              e.UserID,
		Symptoms:            e.Symptoms,
		MedicinesTaken:      e.MedicinesTaken,
		EffectivenessRating: e.EffectivenessRating,
		Notes:               e.Notes,
		EntryDate:           e.EntryDate.Format(utils.DateLayout),
		CreatedAt:           e.CreatedAt,
	})
}

func (e *JournalEntry) UnmarshalJSON(data []byte) error {
	var w journalJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	var date time.Time
	if w.EntryDate != "" {
		d, err := utils.ParseDate(w.EntryDate)
		if err != nil {
			return fmt.Errorf("invalid entry_date %q: %w", w.EntryDate, err)
		}
		date = d
	}
	*e = JournalEntry{
		ID:                  w.ID,
		UserID:              w.UserID,
		Symptoms:            w.Symptoms,
		MedicinesTaken:      w.MedicinesTaken,
		EffectivenessRating: w.EffectivenessRating,
		Notes:               w.Notes,
		EntryDate:           date,
		CreatedAt:           w.CreatedAt,
	}
	return nil
}

// Remedy is a read-only home remedy listed by category.
type Remedy struct {
	ID               string         `gorm:"primaryKey;type:uuid" json:"id" yaml:"-"`
	Category         string         `gorm:"index;not null" json:"category" yaml:"category"`
	Title            string         `gorm:"not null" json:"title" yaml:"title"`
	Ingredients      pq.StringArray `gorm:"type:text[]" json:"ingredients" yaml:"ingredients"`
	PreparationSteps pq.StringArray `gorm:"type:text[]" json:"preparation_steps" yaml:"preparation_steps"`
	Precautions      pq.StringArray `gorm:"type:text[]" json:"precautions" yaml:"precautions"`
}

func (Remedy) TableName() string {
	return "home_remedies"
}

// RemedyCategories are the categories offered by the remedy browser, "All" first.
var RemedyCategories = []string{"All", "Common Cold", "Headache", "Fever", "Digestive Issues"}
