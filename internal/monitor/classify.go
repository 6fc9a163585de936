package monitor

import (
	"path/filepath"
	"strings"

	"github.com/majorcontext/watchprocess/internal/record"
)

// DefaultPackageMarker identifies a package manifest on a build driver's
// command line, as passed by catkin and colcon.
const DefaultPackageMarker = "/package.xml"

// Classifier derives a tag for the invocation from its ancestry.
type Classifier interface {
	Classify(chain []record.ProcessInfo) (string, bool)
}

// ClassifierFunc adapts a function to a Classifier.
type ClassifierFunc func(chain []record.ProcessInfo) (string, bool)

func (f ClassifierFunc) Classify(chain []record.ProcessInfo) (string, bool) { return f(chain) }

// MarkerClassifier tags an invocation with the name of the directory holding
// the first ancestor argument that contains Marker.
type MarkerClassifier struct {
	Marker string
}

func (c MarkerClassifier) Classify(chain []record.ProcessInfo) (string, bool) {
	if c.Marker == "" {
		return "", false
	}
	for _, p := range chain {
		if len(p.Cmdline) < 2 {
			continue
		}
		for _, arg := range p.Cmdline[1:] {
			if strings.Contains(arg, c.Marker) {
				return filepath.Base(filepath.Dir(arg)), true
			}
		}
	}
	return "", false
}

// Classifiers returns the default marker classifier followed by one per
// extra marker.
func Classifiers(extraMarkers ...string) []Classifier {
	cs := []Classifier{MarkerClassifier{Marker: DefaultPackageMarker}}
	for _, m := range extraMarkers {
		if m == "" || m == DefaultPackageMarker {
			continue
		}
		cs = append(cs, MarkerClassifier{Marker: m})
	}
	return cs
}

func classify(chain []record.ProcessInfo, classifiers []Classifier) (string, bool) {
	for _, c := range classifiers {
		if tag, ok := c.Classify(chain); ok {
			return tag, true
		}
	}
	return "", false
}
