package model

import (
	"testing"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunIDOrdering(t *testing.T) {
	id := NewRunID()
	require.NotEqual(t, id, NewRunID())

	parsed, err := ksuid.Parse(id)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), parsed.Time(), time.Minute)

	// ids embed a second-resolution timestamp, so ids minted in earlier
	// seconds sort lexically before later ones
	older, err := ksuid.NewRandomWithTime(time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.True(t, older.String() < id)
}

func TestRunValidate(t *testing.T) {
	valid := RunDescriptor{
		ID:        NewRunID(),
		Kind:      RunKindPublish,
		StartedAt: GetRunTimeStamp(),
		Version:   CurrentRunVersion,
	}
	require.NoError(t, valid.Validate())

	noID := valid
	noID.ID = ""
	require.Error(t, noID.Validate())

	badKind := valid
	badKind.Kind = "deploy"
	require.Error(t, badKind.Validate())

	noStart := valid
	noStart.StartedAt = time.Time{}
	require.Error(t, noStart.Validate())
}

func TestContributorString(t *testing.T) {
	cases := []struct {
		contributor Contributor
		expected    string
	}{
		{Contributor{Name: "Xu Ren", Email: "xu@example.com"}, "Xu Ren <xu@example.com>"},
		{Contributor{Name: "Xu Ren"}, "Xu Ren"},
		{Contributor{Email: "xu@example.com"}, "xu@example.com"},
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, c.contributor.String())
	}
}

func TestParseContributor(t *testing.T) {
	cases := []struct {
		in       string
		expected Contributor
	}{
		{"Xu Ren <xu@example.com>", Contributor{Name: "Xu Ren", Email: "xu@example.com"}},
		{"  Xu Ren  ", Contributor{Name: "Xu Ren"}},
		{"<xu@example.com>", Contributor{Email: "xu@example.com"}},
		{"", Contributor{}},
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, ParseContributor(c.in))
	}
}

func TestContributorRoundTrip(t *testing.T) {
	orig := Contributor{Name: "Xu Ren", Email: "xu@example.com"}
	require.Equal(t, orig, ParseContributor(orig.String()))
}
