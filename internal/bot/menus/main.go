package menus

import (
	"fmt"
	"strings"

	"github.com/echoremedy/echoremedy-bot/internal/bot/keyboards"
	"github.com/echoremedy/echoremedy-bot/internal/domain"
	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/echoremedy/echoremedy-bot/internal/services"
	"github.com/echoremedy/echoremedy-bot/internal/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of the Telegram API the menus need.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// FilePrefix marks a preview that refers to a Telegram file id.
const FilePrefix = "tg-file:"

const disclaimer = "_This is not a medical diagnosis. Consult a healthcare professional for persistent or severe symptoms._"

// Escape escapes the characters legacy Markdown treats specially
func Escape(s string) string {
	r := strings.NewReplacer("_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "`", "\\`")
	return strings.ToValidUTF8(r.Replace(s), "")
}

// send tries Markdown first and falls back to plain text if Telegram rejects it
func send(api Sender, chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := api.Send(msg); err != nil {
		msg.ParseMode = ""
		_, err = api.Send(msg)
		return err
	}
	return nil
}

// SendText sends plain text with an optional keyboard
func SendText(api Sender, chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := api.Send(msg)
	return err
}

// SendLanding sends the entry screen
func SendLanding(api Sender, chatID int64, user *domain.SessionUser) error {
	text := `🩺 *EchoRemedy* · symptom triage in your pocket

📷 Send a photo of a visible symptom
🎙️ Describe how you feel in a voice message
📜 Keep a history of your checks

⚠️ *Important:* results are general guidance only.`

	if user != nil {
		text += fmt.Sprintf("\n\n👋 Welcome back, *%s*!", Escape(user.Name))
	} else {
		text += "\n\nSign in to start an analysis."
	}
	return send(api, chatID, text, keyboards.LandingMenu(user != nil))
}

// SendHome sends the feature overview
func SendHome(api Sender, chatID int64, user *domain.SessionUser) error {
	text := `🏠 *How EchoRemedy works*

1️⃣ Capture a photo or describe your symptoms by voice
2️⃣ Get a likely condition, a home remedy and an urgency level
3️⃣ Review everything later in your history`
	return send(api, chatID, text, keyboards.LandingMenu(user != nil))
}

// SendHelp sends the list of commands
func SendHelp(api Sender, chatID int64) error {
	text := `Available commands:
/start - Show the main menu
/signin - Sign in or sign up
/signout - Sign out and clear local history
/history - Show your analysis history
/journal - Open your health journal
/remedies - Browse home remedies
/help - Show this message

Photo analysis: open 📷 Photo analysis, send an image, then press Analyze.
Voice analysis: open 🎙️ Voice analysis, send a voice message or type your symptoms, then press Analyze.`
	return SendText(api, chatID, text, nil)
}

// SendUploadPrompt asks for an image
func SendUploadPrompt(api Sender, chatID int64, ready bool) error {
	text := `📷 *Photo analysis*

Send a photo of the affected area. Images sent as files work too.

💡 Use good lighting and keep the area in focus.`
	if ready {
		text += "\n\n✅ An image is ready. Press *Analyze image* or send another one."
	}
	return send(api, chatID, text, keyboards.UploadMenu(ready))
}

// SendPhotoReady confirms the selected image
func SendPhotoReady(api Sender, chatID int64, name string) error {
	text := "✅ Image received"
	if name != "" {
		text += ": " + Escape(name)
	}
	text += "\n\nPress *Analyze image* to continue."
	return send(api, chatID, text, keyboards.UploadMenu(true))
}

// SendVoicePrompt asks for a description of the symptoms
func SendVoicePrompt(api Sender, chatID int64, voiceSupported bool, transcript string) error {
	var b strings.Builder
	b.WriteString("🎙️ *Voice analysis*\n\n")
	if voiceSupported {
		b.WriteString("Record a voice message describing your symptoms, or type them.")
	} else {
		b.WriteString("Voice messages are not supported here. Type your symptoms instead.")
	}
	if transcript != "" {
		fmt.Fprintf(&b, "\n\n📝 *Transcript:*\n%s", Escape(transcript))
	}
	return send(api, chatID, b.String(), keyboards.VoiceMenu(transcript != ""))
}

// SendTranscript shows the recognized transcript
func SendTranscript(api Sender, chatID int64, transcript string) error {
	text := fmt.Sprintf("📝 *Transcript:*\n%s\n\nPress *Analyze symptoms* or add more.", Escape(transcript))
	return send(api, chatID, text, keyboards.VoiceMenu(true))
}

// SendAnalyzing sends the progress message and returns it so it can be deleted later
func SendAnalyzing(api Sender, chatID int64, m domain.Modality) (tgbotapi.Message, error) {
	text := "🔬 Analyzing your symptoms..."
	if m == domain.ModalityPhoto {
		text = "🔬 Analyzing image..."
	}
	return api.Send(tgbotapi.NewMessage(chatID, text))
}

func badge(u domain.Urgency) string {
	switch u.Badge() {
	case "destructive":
		return "🔴"
	case "default":
		return "🔵"
	default:
		return "⚪"
	}
}

// FormatResult renders an analysis result
func FormatResult(e domain.HistoryEntry) string {
	var b strings.Builder
	b.WriteString("🩺 *Analysis Result*\n\n")
	fmt.Fprintf(&b, "*Condition:* %s\n", Escape(e.Condition))
	fmt.Fprintf(&b, "*Urgency:* %s %s\n", badge(e.Urgency), Escape(string(e.Urgency)))
	fmt.Fprintf(&b, "*Suggested remedy:* %s\n\n", Escape(e.Remedy))
	b.WriteString(Escape(e.Explanation))
	b.WriteString("\n\n")
	if e.SeekMedicalAttention {
		b.WriteString("⚠️ *Seek medical attention.* Please consult a healthcare professional.\n")
	} else {
		b.WriteString("✅ Home care should be sufficient.\n")
	}
	if e.VoiceInput != "" {
		fmt.Fprintf(&b, "🗣️ You said: \"%s\"\n", Escape(utils.Truncate(e.VoiceInput, 200)))
	}
	b.WriteString("\n")
	b.WriteString(disclaimer)
	return b.String()
}

// SendResult sends the result, attached to the analyzed photo when it came from Telegram
func SendResult(api Sender, chatID int64, e domain.HistoryEntry) error {
	text := FormatResult(e)

	if fileID, ok := strings.CutPrefix(e.ImageURL, FilePrefix); ok {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeMarkdown
		photo.ReplyMarkup = keyboards.ResultMenu()
		if _, err := api.Send(photo); err == nil {
			return nil
		}
		photo.ParseMode = ""
		if _, err := api.Send(photo); err == nil {
			return nil
		}
	}
	return send(api, chatID, text, keyboards.ResultMenu())
}

// SendHistory lists history entries newest first
func SendHistory(api Sender, chatID int64, entries []domain.HistoryEntry, f services.HistoryFilter) error {
	var b strings.Builder
	b.WriteString("📜 *Symptom history*\n")
	if f.Search != "" {
		fmt.Fprintf(&b, "🔍 Search: %s\n", Escape(f.Search))
	}
	if f.Urgency != "" && f.Urgency != services.UrgencyAll {
		fmt.Fprintf(&b, "Urgency: %s\n", Escape(f.Urgency))
	}
	b.WriteString("\n")

	if len(entries) == 0 {
		b.WriteString("No analyses found.")
	}
	for i, e := range entries {
		date := e.Date
		if t, err := utils.ParseISOTimestamp(e.Date); err == nil {
			date = t.Format("Jan 2, 2006 15:04")
		}
		kind := "🎙️"
		if e.Modality() == domain.ModalityPhoto {
			kind = "📷"
		}
		fmt.Fprintf(&b, "*%d.* %s %s %s\n", i+1, kind, Escape(e.Condition), badge(e.Urgency))
		fmt.Fprintf(&b, "   %s · %s\n", Escape(e.Remedy), date)
	}
	return send(api, chatID, b.String(), keyboards.HistoryMenu(entries, f.Urgency))
}

// SendDashboard sends the overview page
func SendDashboard(api Sender, chatID int64, user *domain.SessionUser, stats domain.UrgencyStats, recent []domain.HistoryEntry) error {
	var b strings.Builder
	name := "there"
	if user != nil {
		name = user.Name
	}
	fmt.Fprintf(&b, "📊 *Dashboard*\n\nHello, %s!\n\n", Escape(name))
	fmt.Fprintf(&b, "🔴 High: %d\n🔵 Medium: %d\n⚪ Low: %d\n\n", stats.High, stats.Medium, stats.Low)
	b.WriteString("*Recent analyses:*\n")
	if len(recent) == 0 {
		b.WriteString("Nothing yet. Start with a photo or voice analysis.")
	}
	for _, e := range recent {
		fmt.Fprintf(&b, "• %s %s\n", Escape(e.Condition), badge(e.Urgency))
	}
	return send(api, chatID, b.String(), keyboards.DashboardMenu())
}

// SendRemedies lists remedies for the active category and search
func SendRemedies(api Sender, chatID int64, categories []string, remedies []domain.Remedy, category, search string) error {
	var b strings.Builder
	b.WriteString("🌿 *Home remedies*\n")
	fmt.Fprintf(&b, "Category: %s\n", Escape(category))
	if search != "" {
		fmt.Fprintf(&b, "🔍 Search: %s\n", Escape(search))
	}
	b.WriteString("\n")

	if len(remedies) == 0 {
		b.WriteString("No remedies found.")
	}
	for _, r := range remedies {
		fmt.Fprintf(&b, "*%s* (%s)\n", Escape(r.Title), Escape(r.Category))
		if len(r.Ingredients) > 0 {
			fmt.Fprintf(&b, "🧺 %s\n", Escape(strings.Join(r.Ingredients, ", ")))
		}
		for i, step := range r.PreparationSteps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, Escape(step))
		}
		for _, p := range r.Precautions {
			fmt.Fprintf(&b, "⚠️ %s\n", Escape(p))
		}
		b.WriteString("\n")
	}
	return send(api, chatID, b.String(), keyboards.RemediesMenu(categories, category))
}

func rating(r *int) string {
	if r == nil {
		return "not rated"
	}
	return strings.Repeat("⭐", *r)
}

// SendJournal lists journal entries
func SendJournal(api Sender, chatID int64, entries []domain.JournalEntry) error {
	var b strings.Builder
	b.WriteString("📓 *Health journal*\n\n")
	if len(entries) == 0 {
		b.WriteString("No entries yet. Track your symptoms and what helped.")
	}
	for i, e := range entries {
		fmt.Fprintf(&b, "*%d.* %s · %s\n", i+1, e.EntryDate.Format(utils.DateLayout), Escape(e.Symptoms))
		if e.MedicinesTaken != nil {
			fmt.Fprintf(&b, "   💊 %s\n", Escape(*e.MedicinesTaken))
		}
		fmt.Fprintf(&b, "   Effectiveness: %s\n", rating(e.EffectivenessRating))
		if e.Notes != nil {
			fmt.Fprintf(&b, "   📝 %s\n", Escape(*e.Notes))
		}
	}
	return send(api, chatID, b.String(), keyboards.JournalMenu(entries))
}

// SendAssistant opens the assistant chat
func SendAssistant(api Sender, chatID int64) error {
	text := "🤖 *Medixo*\n\n" + Escape(services.AssistantGreeting) + "\n\nType a question or pick a suggestion."
	return send(api, chatID, text, keyboards.AssistantMenu(services.AssistantSuggestions))
}

// SendAssistantReply sends one assistant answer
func SendAssistantReply(api Sender, chatID int64, reply string) error {
	return SendText(api, chatID, "🤖 "+reply, keyboards.AssistantMenu(services.AssistantSuggestions))
}

// SendNotification shows a failure the way the user should read it
func SendNotification(api Sender, chatID int64, n errors.Notification) error {
	return send(api, chatID, fmt.Sprintf("⚠️ *%s*\n%s", Escape(n.Title), Escape(n.Description)), nil)
}
