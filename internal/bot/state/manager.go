package state

import "sync"

// Conversation states
const (
	None                      = "none"
	WaitingForEmail           = "waiting_for_email"
	WaitingForName            = "waiting_for_name"
	WaitingForHistorySearch   = "waiting_for_history_search"
	WaitingForRemedySearch    = "waiting_for_remedy_search"
	WaitingForJournalSymptoms = "waiting_for_journal_symptoms"
	WaitingForJournalMedicine = "waiting_for_journal_medicine"
	WaitingForJournalRating   = "waiting_for_journal_rating"
	WaitingForJournalNotes    = "waiting_for_journal_notes"
)

// Temp data keys
const (
	KeyEmail           = "email"
	KeyPhotoPreview    = "photo_preview"
	KeyMediaGroup      = "media_group"
	KeyTranscript      = "transcript"
	KeyHistorySearch   = "history_search"
	KeyHistoryUrgency  = "history_urgency"
	KeyRemedyCategory  = "remedy_category"
	KeyRemedySearch    = "remedy_search"
	KeyJournalSymptoms = "journal_symptoms"
	KeyJournalMedicine = "journal_medicine"
	KeyJournalRating   = "journal_rating"
)

// StateManager keeps per-user conversation state and temporary form data.
type StateManager interface {
	SetUserState(userID int64, state string)
	GetUserState(userID int64) string
	SetTempData(userID int64, key, value string)
	GetTempData(userID int64, key string) (string, bool)
	DeleteTempData(userID int64, key string)
	ClearTempData(userID int64)
}

// Manager manages user states and temporary data in memory
type Manager struct {
	userStates map[int64]string
	tempData   map[int64]map[string]string
	mu         sync.RWMutex
}

// NewManager creates a new state manager
func NewManager() *Manager {
	return &Manager{
		userStates: make(map[int64]string),
		tempData:   make(map[int64]map[string]string),
	}
}

// SetUserState sets the state for a user
func (m *Manager) SetUserState(userID int64, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userStates[userID] = state
}

// GetUserState gets the state for a user
func (m *Manager) GetUserState(userID int64) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, exists := m.userStates[userID]
	if !exists {
		return None
	}
	return state
}

// SetTempData sets temporary data for a user
func (m *Manager) SetTempData(userID int64, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tempData[userID] == nil {
		m.tempData[userID] = make(map[string]string)
	}
	m.tempData[userID][key] = value
}

// GetTempData gets temporary data for a user
func (m *Manager) GetTempData(userID int64, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, exists := m.tempData[userID][key]
	return value, exists
}

func (m *Manager) DeleteTempData(userID int64, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tempData[userID], key)
}

// ClearTempData clears all temporary data for a user
func (m *Manager) ClearTempData(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tempData, userID)
}
