package analysis

import (
	"fmt"

	"github.com/echoremedy/echoremedy-bot/internal/domain"
	"github.com/echoremedy/echoremedy-bot/internal/utils"
)

// excerptLength is how many characters of the transcript are quoted back.
const excerptLength = 100

// Template is one canned result. Explain builds the explanation from the
// payload; templates without it use a fixed text.
type Template struct {
	Condition            string
	Remedy               string
	Urgency              domain.Urgency
	SeekMedicalAttention bool
	Explanation          string
	Explain              func(p Payload) string
}

func (t Template) result(p Payload) domain.AnalysisResult {
	explanation := t.Explanation
	if t.Explain != nil {
		explanation = t.Explain(p)
	}
	return domain.AnalysisResult{
		Condition:            t.Condition,
		Remedy:               t.Remedy,
		Urgency:              t.Urgency,
		Explanation:          explanation,
		SeekMedicalAttention: t.SeekMedicalAttention,
		ImageURL:             p.ImageURL,
		VoiceInput:           p.Transcript,
	}
}

func quoted(p Payload, tail string) string {
	return fmt.Sprintf("Based on your description: \"%s...\", %s", utils.Truncate(p.Transcript, excerptLength), tail)
}

// PhotoTemplates is the fixed catalog for image input.
var PhotoTemplates = []Template{
	{
		Condition:            "Minor skin irritation",
		Remedy:               "Apply cold compress for 10-15 minutes. Use aloe vera gel. Keep area clean and dry.",
		Urgency:              domain.UrgencyLow,
		SeekMedicalAttention: false,
		Explanation:          "Based on the image, this appears to be a minor skin irritation. The redness and slight swelling suggest a localized reaction.",
	},
	{
		Condition:            "Possible allergic reaction",
		Remedy:               "Take antihistamine, apply cold compress, avoid known allergens.",
		Urgency:              domain.UrgencyMedium,
		SeekMedicalAttention: true,
		Explanation:          "The pattern and appearance suggest an allergic reaction. Monitor for spreading or worsening symptoms.",
	},
	{
		Condition:            "Superficial cut",
		Remedy:               "Clean with antiseptic, apply bandage, keep dry. Change bandage daily.",
		Urgency:              domain.UrgencyLow,
		SeekMedicalAttention: false,
		Explanation:          "This appears to be a superficial cut that should heal with proper care and hygiene.",
	},
}

// VoiceTemplates is the fixed catalog for transcribed input. Every
// explanation quotes the start of the transcript.
var VoiceTemplates = []Template{
	{
		Condition:            "Headache symptoms",
		Remedy:               "Rest in a dark, quiet room. Apply cold compress to forehead. Stay hydrated. Consider over-the-counter pain relief.",
		Urgency:              domain.UrgencyLow,
		SeekMedicalAttention: false,
		Explain: func(p Payload) string {
			return quoted(p, "this appears to be a common headache.")
		},
	},
	{
		Condition:            "Respiratory symptoms",
		Remedy:               "Rest, stay hydrated, use humidifier. Honey and warm tea can help soothe throat.",
		Urgency:              domain.UrgencyMedium,
		SeekMedicalAttention: true,
		Explain: func(p Payload) string {
			return quoted(p, "your symptoms suggest a respiratory issue. Monitor for fever or difficulty breathing.")
		},
	},
	{
		Condition:            "Digestive discomfort",
		Remedy:               "Stay hydrated with clear fluids. BRAT diet (Bananas, Rice, Applesauce, Toast). Rest.",
		Urgency:              domain.UrgencyLow,
		SeekMedicalAttention: false,
		Explain: func(p Payload) string {
			return quoted(p, "this appears to be digestive discomfort.")
		},
	},
}
