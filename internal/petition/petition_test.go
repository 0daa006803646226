package petition

import (
	"context"
	"errors"
	"testing"

	"civicvoice/backend/internal/llm"
	"civicvoice/backend/internal/models"
	"civicvoice/backend/internal/prompts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorize(t *testing.T) {
	mock := &llm.MockLLM{Response: `{"category":"Water","keywords":["handpump"],"department":"Jal Nigam","summary":"Broken handpump"}`}
	svc := NewService(mock, prompts.Default())

	got, err := svc.Categorize(context.Background(), "handpump is broken")

	require.NoError(t, err)
	assert.Equal(t, "Water", got.Category)
	assert.Equal(t, []string{"handpump"}, got.Keywords)
	assert.Equal(t, "Jal Nigam", got.Department)
	assert.Contains(t, mock.Prompts[0], "handpump is broken")
	assert.Contains(t, mock.Prompts[0], "Infrastructure, Health")
}

func TestCategorize_UnknownCategoryCoerced(t *testing.T) {
	mock := &llm.MockLLM{Response: `{"category":"Roads","department":"PWD"}`}
	svc := NewService(mock, prompts.Default())

	got, err := svc.Categorize(context.Background(), "potholes")

	require.NoError(t, err)
	assert.Equal(t, "Other", got.Category)
	assert.NotNil(t, got.Keywords)
}

func TestCategorize_ParseFailure(t *testing.T) {
	mock := &llm.MockLLM{Response: "The category is Water."}
	svc := NewService(mock, prompts.Default())

	_, err := svc.Categorize(context.Background(), "x")

	assert.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestCategorize_TransportError(t *testing.T) {
	mock := &llm.MockLLM{Err: errors.New("503")}
	svc := NewService(mock, prompts.Default())

	_, err := svc.Categorize(context.Background(), "x")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrParse)
}

func TestDraftPetition(t *testing.T) {
	mock := &llm.MockLLM{Response: "  To the Executive Engineer...\n"}
	svc := NewService(mock, prompts.Default())
	c := &models.Complaint{
		Text:         "No water for 10 days",
		Language:     "hi-IN",
		Category:     "Water",
		Department:   "Jal Nigam",
		Location:     models.Location{Village: "Rampur", State: "UP"},
		ClusterCount: 7,
	}

	text, err := svc.DraftPetition(context.Background(), c)

	require.NoError(t, err)
	assert.Equal(t, "To the Executive Engineer...", text)
	prompt := mock.Prompts[0]
	assert.Contains(t, prompt, "in Hindi")
	assert.Contains(t, prompt, "Rampur, UP")
	assert.Contains(t, prompt, "same issue here: 7")
}

func TestDraftPetition_EmptyReply(t *testing.T) {
	svc := NewService(&llm.MockLLM{Response: "   "}, prompts.Default())

	_, err := svc.DraftPetition(context.Background(), &models.Complaint{Text: "x"})

	assert.ErrorIs(t, err, ErrParse)
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "Hindi", LanguageName("hi"))
	assert.Equal(t, "Tamil", LanguageName("ta-IN"))
	assert.Equal(t, "English", LanguageName(""))
	assert.Equal(t, "English", LanguageName("xx"))
}
