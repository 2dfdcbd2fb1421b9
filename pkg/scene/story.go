package scene

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/user/storyreel/pkg/audio"
)

// ErrInvalidStory is returned when a story document cannot be parsed.
var ErrInvalidStory = errors.New("scene: invalid story")

// Story is a titled list of scenes.
type Story struct {
	Title  string
	Scenes []Scene

	// Conflicts lists scene IDs that carried both an image and a video
	// reference. The video reference was kept.
	Conflicts []string
}

// storyDocument is the on-disk shape shared by JSON and YAML story files.
type storyDocument struct {
	Title  string          `json:"title" yaml:"title"`
	Scenes []sceneDocument `json:"scenes" yaml:"scenes"`
}

type sceneDocument struct {
	ID           string  `json:"id" yaml:"id"`
	Order        int     `json:"order" yaml:"order"`
	Script       string  `json:"script" yaml:"script"`
	VisualPrompt string  `json:"visualPrompt,omitempty" yaml:"visualPrompt,omitempty"`
	ImageURL     string  `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	VideoURL     string  `json:"videoUrl,omitempty" yaml:"videoUrl,omitempty"`
	AudioData    string  `json:"audioData,omitempty" yaml:"audioData,omitempty"`
	Duration     float64 `json:"duration" yaml:"duration"`
}

// ParseStory decodes a story document. JSON is detected by a leading '{',
// anything else is parsed as YAML.
func ParseStory(data []byte) (*Story, error) {
	var doc storyDocument

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidStory)
	}

	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStory, err)
		}
	} else {
		if err := yaml.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStory, err)
		}
	}

	return doc.toStory()
}

// LoadStory reads and parses a story file. Relative visual paths are
// resolved against the directory of the file.
func LoadStory(path string) (*Story, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	story, err := ParseStory(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range story.Scenes {
		v := &story.Scenes[i].Visual
		if v.Present() && isRelativePath(v.Ref) {
			v.Ref = filepath.Join(dir, v.Ref)
		}
	}
	return story, nil
}

func isRelativePath(ref string) bool {
	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "file:") {
		return false
	}
	return !filepath.IsAbs(ref)
}

func (d storyDocument) toStory() (*Story, error) {
	story := &Story{
		Title:  d.Title,
		Scenes: make([]Scene, 0, len(d.Scenes)),
	}

	for _, sd := range d.Scenes {
		id := sd.ID
		if id == "" {
			id = uuid.NewString()
		}

		// Undecodable narration leaves the scene silent.
		var pcm []byte
		var audioErr error
		if sd.AudioData != "" {
			decoded, err := decodeBase64(sd.AudioData)
			if err != nil {
				audioErr = fmt.Errorf("%w: audioData: %v", audio.ErrDecode, err)
			} else {
				pcm = decoded
			}
		}

		if sd.ImageURL != "" && sd.VideoURL != "" {
			story.Conflicts = append(story.Conflicts, id)
		}

		story.Scenes = append(story.Scenes, Scene{
			ID:       id,
			Order:    sd.Order,
			Script:   sd.Script,
			Visual:   NewVisual(sd.ImageURL, sd.VideoURL),
			Audio:    pcm,
			AudioErr: audioErr,
			Duration: sd.Duration,
		})
	}

	return story, nil
}

// MarshalJSON encodes the story in the same shape ParseStory accepts.
func (s *Story) MarshalJSON() ([]byte, error) {
	doc := storyDocument{Title: s.Title}
	for _, sc := range s.Scenes {
		sd := sceneDocument{
			ID:       sc.ID,
			Order:    sc.Order,
			Script:   sc.Script,
			Duration: sc.Duration,
		}
		switch sc.Visual.Kind {
		case VisualImage:
			sd.ImageURL = sc.Visual.Ref
		case VisualVideo:
			sd.VideoURL = sc.Visual.Ref
		}
		if len(sc.Audio) > 0 {
			sd.AudioData = base64.StdEncoding.EncodeToString(sc.Audio)
		}
		doc.Scenes = append(doc.Scenes, sd)
	}
	return json.Marshal(doc)
}

// decodeBase64 accepts standard or raw base64 and an optional data URL prefix.
func decodeBase64(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if idx := strings.Index(s, ","); idx >= 0 {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSpace(s)
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
