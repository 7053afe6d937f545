package keyboards

import (
	"fmt"
	"strconv"

	"github.com/echoremedy/echoremedy-bot/internal/domain"
	"github.com/echoremedy/echoremedy-bot/internal/navigation"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data
const (
	CallbackBack            = "back"
	CallbackHelp            = "help"
	CallbackSignIn          = "signin"
	CallbackSignOut         = "signout"
	CallbackCancel          = "cancel"
	CallbackAnalyzePhoto    = "analyze_photo"
	CallbackAnalyzeVoice    = "analyze_voice"
	CallbackClearTranscript = "voice_clear"
	CallbackHistorySearch   = "hist_search"
	CallbackJournalNew      = "journal_new"
	CallbackSkip            = "skip"
	CallbackRemedySearch    = "remedy_search"

	PrefixNav            = "nav:"
	PrefixHistoryFilter  = "hist_filter:"
	PrefixHistoryDelete  = "hist_del:"
	PrefixJournalRate    = "journal_rate:"
	PrefixJournalDelete  = "journal_del:"
	PrefixRemedyCategory = "remedy_cat:"
	PrefixAssistant      = "assist:"
)

// Nav returns the callback data that opens v.
func Nav(v navigation.View) string {
	return PrefixNav + v.Name()
}

func button(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, data)
}

func backRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(button("◀️ Back", CallbackBack))
}

// LandingMenu creates the entry screen keyboard
func LandingMenu(signedIn bool) tgbotapi.InlineKeyboardMarkup {
	if !signedIn {
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(button("🔐 Sign in / Sign up", CallbackSignIn)),
			tgbotapi.NewInlineKeyboardRow(
				button("🏠 Overview", Nav(navigation.Home{})),
				button("📜 History", Nav(navigation.History{})),
			),
			tgbotapi.NewInlineKeyboardRow(button("❓ Help", CallbackHelp)),
		)
	}
	return HomeMenu()
}

// HomeMenu creates the main feature keyboard
func HomeMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button("📷 Photo analysis", Nav(navigation.Upload{})),
			button("🎙️ Voice analysis", Nav(navigation.Voice{})),
		),
		tgbotapi.NewInlineKeyboardRow(
			button("📜 History", Nav(navigation.History{})),
			button("📊 Dashboard", Nav(navigation.Dashboard{Page: navigation.PageOverview})),
		),
		tgbotapi.NewInlineKeyboardRow(
			button("❓ Help", CallbackHelp),
			button("🚪 Sign out", CallbackSignOut),
		),
	)
}

// UploadMenu offers analysis once an image is ready
func UploadMenu(ready bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if ready {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("🔬 Analyze image", CallbackAnalyzePhoto)))
	}
	rows = append(rows, backRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// VoiceMenu offers analysis once there is a transcript
func VoiceMenu(hasTranscript bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if hasTranscript {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			button("🔬 Analyze symptoms", CallbackAnalyzeVoice),
			button("🧹 Clear", CallbackClearTranscript),
		))
	}
	rows = append(rows, backRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ResultMenu follows an analysis result
func ResultMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button("📷 New photo", Nav(navigation.Upload{})),
			button("🎙️ New voice", Nav(navigation.Voice{})),
		),
		tgbotapi.NewInlineKeyboardRow(
			button("📜 History", Nav(navigation.History{})),
			button("◀️ Back", CallbackBack),
		),
	)
}

// HistoryMenu creates filter, search and delete controls for the listed entries
func HistoryMenu(entries []domain.HistoryEntry, activeUrgency string) tgbotapi.InlineKeyboardMarkup {
	filters := []string{"all"}
	for _, u := range domain.Urgencies {
		filters = append(filters, string(u))
	}

	var filterRow []tgbotapi.InlineKeyboardButton
	for _, f := range filters {
		label := f
		if f == "all" {
			label = "All"
		}
		if f == activeUrgency || (activeUrgency == "" && f == "all") {
			label = "• " + label
		}
		filterRow = append(filterRow, button(label, PrefixHistoryFilter+f))
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		filterRow,
		tgbotapi.NewInlineKeyboardRow(button("🔍 Search", CallbackHistorySearch)),
	}
	for i, e := range entries {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			button(fmt.Sprintf("🗑️ Delete #%d", i+1), PrefixHistoryDelete+strconv.FormatInt(e.ID, 10)),
		))
	}
	rows = append(rows, backRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// DashboardTabs switches between dashboard pages
func DashboardTabs() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		button("📊", Nav(navigation.Dashboard{Page: navigation.PageOverview})),
		button("🌿", Nav(navigation.Dashboard{Page: navigation.PageRemedies})),
		button("📓", Nav(navigation.Dashboard{Page: navigation.PageJournal})),
		button("🤖", Nav(navigation.Dashboard{Page: navigation.PageAssistant})),
	)
}

// DashboardMenu holds the overview quick actions
func DashboardMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button("📷 Upload photo", Nav(navigation.Upload{})),
			button("🎙️ Voice scan", Nav(navigation.Voice{})),
		),
		tgbotapi.NewInlineKeyboardRow(
			button("🌿 Home remedies", Nav(navigation.Dashboard{Page: navigation.PageRemedies})),
			button("📓 Journal", Nav(navigation.Dashboard{Page: navigation.PageJournal})),
		),
		DashboardTabs(),
		backRow(),
	)
}

// RemediesMenu lists the categories, marking the active one
func RemediesMenu(categories []string, active string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range categories {
		label := c
		if c == active {
			label = "• " + c
		}
		row = append(row, button(label, PrefixRemedyCategory+c))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(button("🔍 Search", CallbackRemedySearch)),
		DashboardTabs(),
		backRow(),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// JournalMenu offers a new entry and deletion of the listed ones
func JournalMenu(entries []domain.JournalEntry) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(button("➕ New entry", CallbackJournalNew)),
	}
	for i, e := range entries {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			button(fmt.Sprintf("🗑️ Delete #%d", i+1), PrefixJournalDelete+e.ID),
		))
	}
	rows = append(rows, DashboardTabs(), backRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// RatingMenu asks for an effectiveness rating
func RatingMenu() tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for r := 1; r <= 5; r++ {
		row = append(row, button(strconv.Itoa(r)+"⭐", PrefixJournalRate+strconv.Itoa(r)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		row,
		tgbotapi.NewInlineKeyboardRow(
			button("⏭️ Skip", CallbackSkip),
			button("✖️ Cancel", CallbackCancel),
		),
	)
}

// SkipMenu lets an optional field be skipped
func SkipMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button("⏭️ Skip", CallbackSkip),
			button("✖️ Cancel", CallbackCancel),
		),
	)
}

// CancelMenu aborts the current input
func CancelMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(button("✖️ Cancel", CallbackCancel)),
	)
}

// AssistantMenu offers the quick suggestions
func AssistantMenu(suggestions []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, s := range suggestions {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("💬 "+s, PrefixAssistant+strconv.Itoa(i))))
	}
	rows = append(rows, DashboardTabs(), backRow())
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
