package services

import "strings"

const AssistantGreeting = "Hi! I'm Medixo, your AI medical assistant. How can I help you today? I can provide home remedies, medicine suggestions, and symptom analysis."

// AssistantSuggestions are offered as quick replies.
var AssistantSuggestions = []string{
	"Home remedies for headache",
	"Common cold treatments",
	"When to see a doctor",
}

type assistantRule struct {
	keywords []string
	reply    string
}

// Checked in order; the first rule with a matching keyword wins.
var assistantRules = []assistantRule{
	{
		keywords: []string{"headache"},
		reply:    "For headaches, try these remedies: 1) Apply peppermint oil to temples, 2) Stay hydrated, 3) Try ginger tea, 4) Apply cold compress. If pain persists for more than 2 days or is severe, please consult a doctor.",
	},
	{
		keywords: []string{"cold", "cough"},
		reply:    "For common cold: 1) Drink warm ginger honey tea, 2) Gargle with salt water, 3) Get plenty of rest, 4) Stay hydrated. Symptoms usually improve in 7-10 days. See a doctor if fever exceeds 101°F or symptoms worsen.",
	},
	{
		keywords: []string{"fever"},
		reply:    "For fever management: 1) Stay hydrated, 2) Rest in a cool room, 3) Use lukewarm sponge baths, 4) Consider willow bark tea (natural aspirin). ⚠️ Seek immediate medical attention if fever exceeds 103°F (39.4°C) or if you have severe symptoms.",
	},
}

const assistantFallback = "I understand you're concerned about your health. Could you provide more specific details about your symptoms? This will help me give you better guidance. Remember, I'm here to provide general information - for serious concerns, always consult with a healthcare professional."

// AssistantService answers chat messages with canned keyword replies.
type AssistantService struct{}

func NewAssistantService() *AssistantService {
	return &AssistantService{}
}

// Reply returns the answer to message; blank messages get none.
func (s *AssistantService) Reply(message string) (string, bool) {
	if strings.TrimSpace(message) == "" {
		return "", false
	}

	lower := strings.ToLower(message)
	for _, rule := range assistantRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.reply, true
			}
		}
	}
	return assistantFallback, true
}
