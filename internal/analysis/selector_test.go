package analysis

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/echoremedy/echoremedy-bot/internal/domain"
	"github.com/echoremedy/echoremedy-bot/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noDelay() Option {
	return WithDelays(0, 0)
}

func TestPhotoTemplatesBoundValues(t *testing.T) {
	expected := []struct {
		condition string
		urgency   domain.Urgency
		seek      bool
	}{
		{"Minor skin irritation", domain.UrgencyLow, false},
		{"Possible allergic reaction", domain.UrgencyMedium, true},
		{"Superficial cut", domain.UrgencyLow, false},
	}
	require.Len(t, PhotoTemplates, len(expected))

	for i, want := range expected {
		t.Run(want.condition, func(t *testing.T) {
			sel := NewMockSelector(noDelay(), WithStrategy(FixedStrategy(i)))
			res, err := sel.Analyze(context.Background(), PhotoPayload("uploads/rash.jpg"))
			require.NoError(t, err)
			assert.Equal(t, want.condition, res.Condition)
			assert.Equal(t, want.urgency, res.Urgency)
			assert.Equal(t, want.seek, res.SeekMedicalAttention)
			assert.Equal(t, "uploads/rash.jpg", res.ImageURL)
			assert.Empty(t, res.VoiceInput)
			assert.Equal(t, domain.ModalityPhoto, res.Modality())
		})
	}
}

func TestVoiceEmptyTranscriptFailsBeforeDelay(t *testing.T) {
	sel := NewMockSelector(WithDelays(time.Hour, time.Hour))

	for _, transcript := range []string{"", "   ", "\n\t "} {
		start := time.Now()
		_, err := sel.Analyze(context.Background(), VoicePayload(transcript))
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, errors.ErrEmptyInput))
		assert.Less(t, time.Since(start), time.Second)
	}
}

func TestPhotoWithoutImageIsInvalid(t *testing.T) {
	sel := NewMockSelector(WithDelays(time.Hour, time.Hour))
	_, err := sel.Analyze(context.Background(), PhotoPayload(""))
	assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))
}

func TestVoiceHeadacheScenario(t *testing.T) {
	const transcript = "I have a bad headache since morning"
	conditions := map[string]bool{}
	for _, tmpl := range VoiceTemplates {
		conditions[tmpl.Condition] = true
	}

	sel := NewMockSelector(noDelay())
	for i := 0; i < 20; i++ {
		res, err := sel.Analyze(context.Background(), VoicePayload(transcript))
		require.NoError(t, err)
		assert.True(t, conditions[res.Condition], "unexpected condition %q", res.Condition)
		assert.Equal(t, transcript, res.VoiceInput)
		assert.Contains(t, res.Explanation, transcript)
		assert.Empty(t, res.ImageURL)
	}
}

func TestVoiceExplanationQuotesFirstHundredCharacters(t *testing.T) {
	long := ""
	for len([]rune(long)) < 150 {
		long += "my chest feels tight "
	}
	for i := range VoiceTemplates {
		sel := NewMockSelector(noDelay(), WithStrategy(FixedStrategy(i)))
		res, err := sel.Analyze(context.Background(), VoicePayload(long))
		require.NoError(t, err)
		assert.Contains(t, res.Explanation, string([]rune(long)[:100]))
		assert.NotContains(t, res.Explanation, string([]rune(long)[:101])+"\"")
		assert.Equal(t, long, res.VoiceInput)
	}
}

func TestVoiceTemplatesBoundValues(t *testing.T) {
	expected := map[string]struct {
		urgency domain.Urgency
		seek    bool
	}{
		"Headache symptoms":    {domain.UrgencyLow, false},
		"Respiratory symptoms": {domain.UrgencyMedium, true},
		"Digestive discomfort": {domain.UrgencyLow, false},
	}
	require.Len(t, VoiceTemplates, len(expected))
	for _, tmpl := range VoiceTemplates {
		want, ok := expected[tmpl.Condition]
		require.True(t, ok, tmpl.Condition)
		assert.Equal(t, want.urgency, tmpl.Urgency)
		assert.Equal(t, want.seek, tmpl.SeekMedicalAttention)
	}
}

func TestStrategyFaultsBecomeAnalysisFailed(t *testing.T) {
	strategies := map[string]Strategy{
		"out of range": FixedStrategy(7),
		"negative":     FixedStrategy(-1),
		"panic": StrategyFunc(func(int) int {
			panic("classifier crashed")
		}),
	}
	for name, s := range strategies {
		t.Run(name, func(t *testing.T) {
			sel := NewMockSelector(noDelay(), WithStrategy(s))
			_, err := sel.Analyze(context.Background(), VoicePayload("cough"))
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrAnalysisFailed))
		})
	}
}

func TestAnalyzeHonorsContext(t *testing.T) {
	sel := NewMockSelector(WithDelays(time.Hour, time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := sel.Analyze(ctx, VoicePayload("sneezing"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUnknownModality(t *testing.T) {
	_, err := NewMockSelector(noDelay()).Analyze(context.Background(), Payload{Modality: "smell"})
	assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))
}
