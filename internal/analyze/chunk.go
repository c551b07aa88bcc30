// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

// DefaultMaxChunkChars bounds completion request size when the config does
// not override it.
const DefaultMaxChunkChars = 12000

// SplitText splits s into contiguous non-overlapping chunks of at most max
// characters. Concatenating the result reproduces s exactly: no overlap, no
// loss, and no trailing empty chunk when len(s) is an exact multiple of max.
// Input at or under max (including empty) is returned as a single chunk.
func SplitText(s string, max int) []string {
	if max <= 0 {
		max = DefaultMaxChunkChars
	}
	if len(s) <= max {
		return []string{s}
	}

	chunks := make([]string, 0, (len(s)+max-1)/max)
	for start := 0; start < len(s); start += max {
		end := start + max
		if end > len(s) {
			end = len(s)
		}
		chunks = append(chunks, s[start:end])
	}
	return chunks
}
