package audio

import (
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/gcottom/audiometa/v2"

	"ghostbit/stegoerr"
)

// TagInfo holds the descriptive tag fields of a carrier file. It is
// informational only: tags live in the untouched header/trailer regions of
// a carrier, never in the sample body the codec writes to.
type TagInfo struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Genre  string `json:"genre,omitempty"`
	Year   string `json:"year,omitempty"`
}

// Empty reports whether no tag field is set.
func (t *TagInfo) Empty() bool {
	return t.Title == "" && t.Artist == "" && t.Album == "" && t.Genre == "" && t.Year == ""
}

// ReadTags reads the descriptive tags of an audio file, for display
// alongside analysis results. MP3 sources go through id3v2 directly;
// everything else goes through audiometa, which speaks FLAC/M4A/OGG tags
// uniformly. A file with no readable tags is not an analysis failure —
// callers treat an error here as "no tags" and move on.
func ReadTags(path string) (*TagInfo, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return readMP3Tags(path)
	default:
		return readGenericTags(path)
	}
}

func readMP3Tags(path string) (*TagInfo, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, stegoerr.IO("failed to read ID3v2 tags", err)
	}
	defer tag.Close()

	return &TagInfo{
		Title:  tag.Title(),
		Artist: tag.Artist(),
		Album:  tag.Album(),
		Genre:  tag.Genre(),
		Year:   tag.Year(),
	}, nil
}

func readGenericTags(path string) (*TagInfo, error) {
	tag, err := audiometa.OpenTagFromPath(path)
	if err != nil {
		return nil, stegoerr.IO("failed to read tags", err)
	}

	return &TagInfo{
		Title:  tag.Title(),
		Artist: tag.Artist(),
		Album:  tag.Album(),
		Genre:  tag.Genre(),
	}, nil
}

// ValidateOutputFormat rejects any target format the codec cannot write
// losslessly.
func ValidateOutputFormat(ext string) error {
	if strings.ToLower(ext) != ".wav" {
		return stegoerr.Format("lossy output target refused: " + ext)
	}
	return nil
}
