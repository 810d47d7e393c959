package aggregate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"music-platform/internal/catalog"
	"music-platform/internal/identity"
	"music-platform/internal/playlist"
)

func intPtr(v int) *int { return &v }

var created0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func track(id, title string, seconds *int, plays int64) catalog.TrackDetail {
	return catalog.TrackDetail{
		Track: catalog.Track{
			ID:              id,
			Title:           title,
			AlbumID:         "al-1",
			DurationSeconds: seconds,
			FileURL:         "/music/" + id + ".mp3",
			PlayCount:       plays,
			CreatedAt:       created0,
		},
		AlbumTitle: "The Dark Side of the Moon",
		ArtistID:   "ar-1",
		ArtistName: "Pink Floyd",
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[int]string{
		0:    "00:00",
		9:    "00:09",
		382:  "06:22",
		795:  "13:15",
		3725: "62:05",
		-5:   "00:00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatDuration(in), "seconds=%d", in)
	}
}

func TestTrackPayloadOf(t *testing.T) {
	got := TrackPayloadOf(track("t-1", "Money", intPtr(382), 7))
	want := TrackPayload{
		ID:                "t-1",
		Title:             "Money",
		DurationSeconds:   intPtr(382),
		DurationFormatted: "06:22",
		FileURL:           "/music/t-1.mp3",
		PlayCount:         7,
		Album:             AlbumRef{ID: "al-1", Title: "The Dark Side of the Moon"},
		Artist:            ArtistRef{ID: "ar-1", Name: "Pink Floyd"},
		CreatedAt:         created0,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}

	unknown := TrackPayloadOf(track("t-2", "Intro", nil, 0))
	assert.Equal(t, "00:00", unknown.DurationFormatted)
	assert.Nil(t, unknown.DurationSeconds)
}

func TestAlbumPayloadOf(t *testing.T) {
	al := catalog.Album{
		ID: "al-1", Title: "The Dark Side of the Moon", ArtistID: "ar-1", ArtistName: "Pink Floyd",
		TotalTracks: 5, TotalDuration: 1000, CreatedAt: created0,
	}

	t.Run("StoredTotals", func(t *testing.T) {
		p := AlbumPayloadOf(al, nil)
		assert.Equal(t, 5, p.TotalTracks)
		assert.Equal(t, "16:40", p.TotalDurationFormatted)
		assert.Nil(t, p.Tracks)

		raw, err := json.Marshal(p)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), `"tracks"`)
	})

	t.Run("WithTracks", func(t *testing.T) {
		p := AlbumPayloadOf(al, []catalog.TrackDetail{
			track("t-1", "Money", intPtr(382), 0),
			track("t-2", "Time", intPtr(413), 0),
			track("t-3", "Untimed", nil, 0),
		})
		assert.Equal(t, 3, p.TotalTracks)
		assert.Equal(t, 795, p.TotalDuration)
		assert.Equal(t, "13:15", p.TotalDurationFormatted)
		require.Len(t, p.Tracks, 3)
		assert.Equal(t, "Money", p.Tracks[0].Title)
	})

	t.Run("EmptyTrackList", func(t *testing.T) {
		raw, err := json.Marshal(AlbumPayloadOf(al, []catalog.TrackDetail{}))
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"tracks":[]`)
		assert.Contains(t, string(raw), `"total_tracks":0`)
	})
}

func TestArtistPayloadOf(t *testing.T) {
	a := catalog.Artist{ID: "ar-1", Name: "Pink Floyd", TotalAlbums: 2, TotalTracks: 6}
	p := ArtistPayloadOf(a, []catalog.Album{
		{ID: "al-1", Title: "Animals", ArtistID: "ar-1", ArtistName: "Pink Floyd", TotalTracks: 5, TotalDuration: 2500},
		{ID: "al-2", Title: "Meddle", ArtistID: "ar-1", ArtistName: "Pink Floyd", TotalTracks: 1, TotalDuration: 60},
	})
	require.Len(t, p.Albums, 2)
	assert.Equal(t, "41:40", p.Albums[0].TotalDurationFormatted)
	assert.Equal(t, ArtistRef{ID: "ar-1", Name: "Pink Floyd"}, p.Albums[1].Artist)
	assert.Nil(t, p.Albums[0].Tracks)
}

func TestPlaylistPayloadOf(t *testing.T) {
	added := created0.Add(time.Hour)
	pl := playlist.Playlist{
		ID: "pl-1", OwnerID: "u-1", Name: "Road trip", IsPublic: true, CreatedAt: created0,
		Entries: []playlist.Entry{
			{TrackDetail: track("t-1", "Money", intPtr(382), 0), Position: 1, AddedAt: added},
			{TrackDetail: track("t-2", "Time", intPtr(413), 0), Position: 4, AddedAt: added},
		},
	}

	got := PlaylistPayloadOf(pl)
	assert.Equal(t, 2, got.TotalTracks)
	assert.Equal(t, 795, got.TotalDuration)
	assert.Equal(t, "13:15", got.TotalDurationFormatted)

	positions := make([]int, 0, len(got.Tracks))
	for _, tr := range got.Tracks {
		positions = append(positions, tr.Position)
	}
	if diff := cmp.Diff([]int{1, 4}, positions); diff != "" {
		t.Errorf("positions (-want +got):\n%s", diff)
	}

	raw, err := json.Marshal(got.Tracks[0])
	require.NoError(t, err)
	var flat map[string]any
	require.NoError(t, json.Unmarshal(raw, &flat))
	assert.Equal(t, "Money", flat["title"])
	assert.EqualValues(t, 1, flat["position"])

	meta := PlaylistPayloadOf(playlist.Playlist{ID: "pl-2", TotalTracks: 3, TotalDuration: 61})
	assert.Nil(t, meta.Tracks)
	assert.Equal(t, "01:01", meta.TotalDurationFormatted)
}

func TestUserPayloadOmitsHash(t *testing.T) {
	raw, err := json.Marshal(UserPayloadOf(identity.User{
		ID: "u-1", Name: "Alice", Email: "alice@example.com", PasswordHash: "$2a$10$secret", Active: true,
	}))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
	assert.NotContains(t, string(raw), "password")
	assert.Contains(t, string(raw), `"email":"alice@example.com"`)
}
