package seed

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/quitbridge-backend/internal/domain"
	"github.com/yungbote/quitbridge-backend/internal/domain/achievements"
)

// catalogPathEnv points at a YAML file that replaces the embedded catalog.
const catalogPathEnv = "ACHIEVEMENT_CATALOG_YAML"

//go:embed catalog.yaml
var catalogFS embed.FS

type yamlCatalog struct {
	Catalog      string            `yaml:"catalog"`
	Version      int               `yaml:"version"`
	Achievements []yamlAchievement `yaml:"achievements"`
}

type yamlAchievement struct {
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	IconURL       string `yaml:"icon_url"`
	BadgeType     string `yaml:"badge_type"`
	CriteriaType  string `yaml:"criteria_type"`
	CriteriaValue int    `yaml:"criteria_value"`
	Points        int    `yaml:"points"`
}

// LoadCatalog returns the achievement catalog, from ACHIEVEMENT_CATALOG_YAML
// when set and from the embedded default otherwise.
func LoadCatalog() ([]types.Achievement, error) {
	data, err := readCatalog()
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

func readCatalog() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(catalogPathEnv)); path != "" {
		return os.ReadFile(path)
	}
	return catalogFS.ReadFile("catalog.yaml")
}

func ParseCatalog(data []byte) ([]types.Achievement, error) {
	var cat yamlCatalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse achievement catalog: %w", err)
	}
	if len(cat.Achievements) == 0 {
		return nil, fmt.Errorf("achievement catalog is empty")
	}
	seen := make(map[string]bool, len(cat.Achievements))
	out := make([]types.Achievement, 0, len(cat.Achievements))
	for i, a := range cat.Achievements {
		name := strings.TrimSpace(a.Name)
		switch {
		case name == "":
			return nil, fmt.Errorf("achievement %d: missing name", i)
		case seen[name]:
			return nil, fmt.Errorf("achievement %q: duplicate name", name)
		case !achievements.IsCriteriaType(a.CriteriaType):
			return nil, fmt.Errorf("achievement %q: unknown criteria_type %q", name, a.CriteriaType)
		case a.CriteriaValue < 0 || a.Points < 0:
			return nil, fmt.Errorf("achievement %q: negative criteria_value or points", name)
		}
		seen[name] = true
		out = append(out, types.Achievement{
			Name:          name,
			Description:   strings.TrimSpace(a.Description),
			IconURL:       strings.TrimSpace(a.IconURL),
			BadgeType:     strings.TrimSpace(a.BadgeType),
			CriteriaType:  a.CriteriaType,
			CriteriaValue: a.CriteriaValue,
			Points:        a.Points,
		})
	}
	return out, nil
}
