// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-engine/pkg/types"
)

func TestNewProfile_Builtins(t *testing.T) {
	assert.Equal(t, types.English, en.Language)
	assert.Len(t, en.Disclaimers, 16)
	assert.Len(t, en.Transitions, 21)
	assert.Empty(t, en.TransitionPhrases)
	assert.Nil(t, en.AllowList)
	assert.True(t, en.UpperTitle)
	assert.Equal(t, "References", en.ReferencesHeader)

	assert.Equal(t, types.Chinese, cn.Language)
	assert.Len(t, cn.Disclaimers, 12)
	assert.Len(t, cn.TransitionPhrases, 26)
	assert.NotNil(t, cn.AllowList)
	assert.False(t, cn.UpperTitle)
	assert.Equal(t, "参考文献", cn.ReferencesHeader)
	assert.Equal(t, "然而，", cn.TransitionPhrases[0])
}

func TestNewProfile_Overrides(t *testing.T) {
	p, err := NewProfile(types.English, types.ProfileOverrides{
		Disclaimers: []string{`As a language model.*?\.`},
		Transitions: []string{"Notably,"},
	})
	require.NoError(t, err)

	out := New(p).Format("as a language model I agree. Notably, the effect held.", nil)
	assert.NotContains(t, out, "language model")
	assert.NotContains(t, out, "Notably")
	assert.Contains(t, out, "the effect held.")

	p, err = NewProfile(types.Chinese, types.ProfileOverrides{Transitions: []string{"首先"}})
	require.NoError(t, err)
	assert.Contains(t, p.TransitionPhrases, "首先，")
}

func TestNewProfile_Errors(t *testing.T) {
	tests := []struct {
		name   string
		lang   types.Language
		o      types.ProfileOverrides
		errMsg string
	}{
		{"unknown language", types.Language("fr"), types.ProfileOverrides{}, "no profile"},
		{"invalid disclaimer regex", types.English, types.ProfileOverrides{Disclaimers: []string{"(unclosed"}}, "disclaimer pattern"},
		{"headers without references", types.English, types.ProfileOverrides{Headers: []string{"Title", "Abstract"}}, "must include"},
		{"empty header", types.Chinese, types.ProfileOverrides{Headers: []string{"标题", " ", "参考文献"}}, "empty section header"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProfile(tt.lang, tt.o)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestProfiles(t *testing.T) {
	profiles, err := Profiles(types.FormatConfig{
		Chinese: types.ProfileOverrides{Headers: []string{"标题", "摘要", "参考文献"}},
	})
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, []string{"标题", "摘要", "参考文献"}, profiles[types.Chinese].Headers)
	assert.Len(t, profiles[types.English].Headers, 8)
}
