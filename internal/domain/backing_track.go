package domain

import (
	"strings"
)

// BackingTrack is a play-along recording for a song.
type BackingTrack struct {
	ID   int64  `json:"id"`
	Band string `json:"band"`
	Song string `json:"song"`
	// Link is the track page; MP3 the direct audio file behind it.
	Link string `json:"link"`
	MP3  string `json:"-"`
}

// FilterBySong keeps the tracks whose song contains song, ignoring case.
func FilterBySong(tracks []BackingTrack, song string) []BackingTrack {
	needle := strings.ToLower(song)
	filtered := make([]BackingTrack, 0, len(tracks))
	for _, t := range tracks {
		if strings.Contains(strings.ToLower(t.Song), needle) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}
