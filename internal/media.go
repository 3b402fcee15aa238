package internal

import (
	"fmt"
	"strings"
)

// MediaKind is the path prefix of a media resource
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaFile  MediaKind = "file"
	MediaVoice MediaKind = "voice"
	MediaData  MediaKind = "data"
)

// MediaKinds lists every supported kind
var MediaKinds = []MediaKind{MediaImage, MediaVideo, MediaFile, MediaVoice, MediaData}

// ParseMediaKind validates a kind given on the command line
func ParseMediaKind(s string) (MediaKind, error) {
	for _, k := range MediaKinds {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unsupported media kind: %s (supported: image, video, file, voice, data)", s)
}

// MediaURL joins base, kind and id with "/". The id is used verbatim, so a
// data path may itself contain slashes.
func MediaURL(base string, kind MediaKind, id string) string {
	return strings.TrimSuffix(base, "/") + "/" + string(kind) + "/" + id
}
