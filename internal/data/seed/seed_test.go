package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	repotest "github.com/yungbote/quitbridge-backend/internal/data/repos/testutil"
	"github.com/yungbote/quitbridge-backend/internal/domain/achievements"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
)

func TestLoadCatalog_Embedded(t *testing.T) {
	t.Setenv(catalogPathEnv, "")
	cat, err := LoadCatalog()
	require.NoError(t, err)
	require.Len(t, cat, 16)

	thresholds := make([]int, 0, len(cat))
	for _, a := range cat {
		require.Equal(t, achievements.CriteriaDaysSmokeFree, a.CriteriaType)
		thresholds = append(thresholds, a.CriteriaValue)
	}
	require.Equal(t, []int{1, 2, 3, 3, 4, 5, 7, 10, 14, 18, 21, 30, 60, 75, 90, 120}, thresholds)
	require.Equal(t, "One Week Warrior", cat[6].Name)
	require.Equal(t, 50, cat[6].Points)
}

func TestLoadCatalog_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
achievements:
  - name: "First Check-in"
    criteria_type: total_records
    criteria_value: 1
    points: 5
`), 0o600))
	t.Setenv(catalogPathEnv, path)

	cat, err := LoadCatalog()
	require.NoError(t, err)
	require.Len(t, cat, 1)
	require.Equal(t, achievements.CriteriaTotalRecords, cat[0].CriteriaType)
}

func TestParseCatalog_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":     "achievements: []",
		"no name":   "achievements:\n  - criteria_type: money_saved\n",
		"criteria":  "achievements:\n  - name: x\n    criteria_type: cigars_lit\n",
		"duplicate": "achievements:\n  - name: x\n    criteria_type: money_saved\n  - name: x\n    criteria_type: money_saved\n",
		"negative":  "achievements:\n  - name: x\n    criteria_type: money_saved\n    points: -1\n",
		"malformed": "achievements: [",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(raw))
			require.Error(t, err)
		})
	}
}

func TestAchievements_IdempotentByName(t *testing.T) {
	db := repotest.FreshDB(t)
	ctx := context.Background()
	log := repotest.Logger(t)
	repo := repos.NewAchievementRepo(db, log)

	t.Setenv(catalogPathEnv, "")
	cat, err := LoadCatalog()
	require.NoError(t, err)

	first, err := Achievements(ctx, log, repo, cat)
	require.NoError(t, err)
	require.Equal(t, Result{Created: 16}, first)

	second, err := Achievements(ctx, log, repo, cat)
	require.NoError(t, err)
	require.Equal(t, Result{Skipped: 16}, second)

	count, err := repo.Count(dbctx.Context{Ctx: ctx})
	require.NoError(t, err)
	require.EqualValues(t, 16, count)
}
