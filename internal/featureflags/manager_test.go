package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager_Enabled(t *testing.T) {
	m := NewManager("email_capture=on, pro_upsell=off, beta_editor=true, legacy_themes=0")

	assert.True(t, m.Enabled(FlagEmailCapture, 1))
	assert.True(t, m.Enabled("beta_editor", 1))
	assert.False(t, m.Enabled("pro_upsell", 1))
	assert.False(t, m.Enabled("legacy_themes", 1))
	assert.False(t, m.Enabled("unknown_flag", 1))
}

func TestManager_NameNormalization(t *testing.T) {
	m := NewManager(" Email_Capture = ON ")

	assert.True(t, m.Enabled("email_capture", 1))
	assert.True(t, m.Enabled("EMAIL_CAPTURE", 1))
}

func TestManager_PercentRollout(t *testing.T) {
	m := NewManager("gradual=50%")

	// Deterministic per user: the same user always gets the same answer.
	for _, userID := range []uint{1, 2, 3, 99} {
		first := m.Enabled("gradual", userID)
		assert.Equal(t, first, m.Enabled("gradual", userID))
	}

	// A 50% rollout over many users lands somewhere in between.
	on := 0
	for userID := uint(1); userID <= 1000; userID++ {
		if m.Enabled("gradual", userID) {
			on++
		}
	}
	assert.Greater(t, on, 300)
	assert.Less(t, on, 700)

	full := NewManager("everyone=100%")
	assert.True(t, full.Enabled("everyone", 1))

	none := NewManager("noone=0%")
	assert.False(t, none.Enabled("noone", 1))

	anon := NewManager("gradual=50%")
	assert.False(t, anon.Enabled("gradual", 0), "anonymous users stay out of partial rollouts")
}

func TestManager_MalformedEntries(t *testing.T) {
	m := NewManager("ok=on,,novalue,=on,bad=pct%")

	assert.True(t, m.Enabled("ok", 1))
	assert.False(t, m.Enabled("novalue", 1))
	assert.False(t, m.Enabled("bad", 1))
	assert.Len(t, m.Raw(), 2)
}

func TestManager_Snapshot(t *testing.T) {
	m := NewManager("email_capture=on,pro_upsell=off")

	snap := m.Snapshot(7)
	assert.Equal(t, map[string]bool{
		"email_capture": true,
		"pro_upsell":    false,
	}, snap)
}

func TestManager_NilSafe(t *testing.T) {
	var m *Manager
	assert.False(t, m.Enabled("anything", 1))
}
