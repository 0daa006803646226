package localization

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LoadsBundledLanguages(t *testing.T) {
	l, err := New()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"en", "hi"}, l.Languages())
}

func TestFormat_OTP(t *testing.T) {
	l, err := New()
	require.NoError(t, err)

	en := l.Format("en", KeyOTPSMS, "123456", 5)
	assert.Contains(t, en, "123456")
	assert.Contains(t, en, "5 minutes")

	hi := l.Format("hi-IN", KeyOTPSMS, "654321", 5)
	assert.Contains(t, hi, "654321")
	assert.NotEqual(t, en, hi)
}

func TestFormat_IndexedArgsInHindi(t *testing.T) {
	l, err := New()
	require.NoError(t, err)

	msg := l.Format("hi", KeyEscalationNotice, "c-1", "Water", "Pune", 3, 20)

	assert.Contains(t, msg, "20 दिनों")
	assert.Contains(t, msg, "स्तर 3")
	assert.NotContains(t, msg, "%!")
}

func TestGetString_Fallbacks(t *testing.T) {
	fsys := fstest.MapFS{
		"en.json":   {Data: []byte(`{"greeting":"Hello","only_en":"English only"}`)},
		"hi.json":   {Data: []byte(`{"greeting":"नमस्ते"}`)},
		"notes.txt": {Data: []byte("ignored")},
	}
	l, err := NewFromFS(fsys)
	require.NoError(t, err)

	assert.Equal(t, "नमस्ते", l.GetString("HI", "greeting"))
	assert.Equal(t, "English only", l.GetString("hi", "only_en"))
	assert.Equal(t, "Hello", l.GetString("ta", "greeting"))
	assert.Equal(t, "missing_key", l.GetString("en", "missing_key"))
}

func TestNewFromFS_BadJSON(t *testing.T) {
	_, err := NewFromFS(fstest.MapFS{"en.json": {Data: []byte("{")}})
	assert.Error(t, err)
}
