package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/steam-tracker/internal/config"
	"github.com/steam-tracker/internal/domain"
	"github.com/steam-tracker/internal/steam"
)

var (
	errNoPlayerStats = errors.New("player stats unavailable")
	errNoSchema      = errors.New("achievement schema unavailable")
)

// AchievementAggregator merges a player's unlock records with the title's
// schema and global rarity
type AchievementAggregator struct {
	steam    SteamAPI
	iconBase string
	logger   *slog.Logger
}

// NewAchievementAggregator creates a new achievement aggregator
func NewAchievementAggregator(steam SteamAPI, cfg *config.SteamConfig, logger *slog.Logger) *AchievementAggregator {
	return &AchievementAggregator{
		steam:    steam,
		iconBase: cfg.AchievementIconBase,
		logger:   logger,
	}
}

// GetAchievements fetches rarity, unlock records and schema concurrently and
// joins them. If the unlock records or the schema are unavailable the
// result is domain.EmptyAggregate(); missing rarity only falls back to the
// default percentage.
func (a *AchievementAggregator) GetAchievements(ctx context.Context, playerID, titleID string) domain.AggregateResult {
	var (
		rarity domain.GlobalRarity
		stats  *steam.PlayerStats
		schema *steam.GameSchema
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		pcts, err := a.steam.GetGlobalAchievementPercentages(gctx, titleID)
		if err != nil {
			a.logger.Warn("global achievement percentages unavailable",
				"title_id", titleID,
				"error", err,
			)
			return nil
		}
		rarity = buildRarity(pcts)
		return nil
	})

	g.Go(func() error {
		s, err := a.steam.GetPlayerAchievements(gctx, playerID, titleID)
		if err != nil {
			return fmt.Errorf("fetching player achievements: %w", err)
		}
		if s == nil || s.Achievements == nil || (s.Success != nil && !*s.Success) {
			return errNoPlayerStats
		}
		stats = s
		return nil
	})

	g.Go(func() error {
		s, err := a.steam.GetSchemaForGame(gctx, titleID)
		if err != nil {
			return fmt.Errorf("fetching achievement schema: %w", err)
		}
		if s.Achievements() == nil {
			return errNoSchema
		}
		schema = s
		return nil
	})

	if err := g.Wait(); err != nil {
		a.logger.Info("achievements unavailable",
			"player_id", playerID,
			"title_id", titleID,
			"error", err,
		)
		return domain.EmptyAggregate()
	}

	result := aggregate(
		toUnlockRecords(stats.Achievements),
		toDefinitions(schema.Achievements()),
		rarity,
		a.iconPrefix(titleID),
	)
	result.GameName = schema.GameName
	if result.GameName == "" {
		result.GameName = stats.GameName
	}
	return result
}

func (a *AchievementAggregator) iconPrefix(titleID string) string {
	if a.iconBase == "" {
		return ""
	}
	return fmt.Sprintf(a.iconBase, url.PathEscape(titleID))
}

// buildRarity keeps only usable percentages. NaN, infinities and values
// outside 0..100 are dropped so those keys fall back to DefaultRarity.
func buildRarity(pcts []steam.GlobalPercentage) domain.GlobalRarity {
	rarity := make(domain.GlobalRarity, len(pcts))
	for _, p := range pcts {
		pct := float64(p.Percent)
		if p.Name == "" || math.IsNaN(pct) || pct < 0 || pct > 100 {
			continue
		}
		rarity[p.Name] = pct
	}
	return rarity
}

func toUnlockRecords(raw []steam.PlayerAchievement) []domain.UnlockRecord {
	records := make([]domain.UnlockRecord, 0, len(raw))
	for _, r := range raw {
		records = append(records, domain.UnlockRecord{
			APIName:    r.APIName,
			Achieved:   r.Achieved == 1,
			UnlockTime: r.UnlockTime,
		})
	}
	return records
}

func toDefinitions(raw []steam.SchemaAchievement) map[string]domain.AchievementDefinition {
	defs := make(map[string]domain.AchievementDefinition, len(raw))
	for _, r := range raw {
		defs[r.Name] = domain.AchievementDefinition{
			APIName:     r.Name,
			DisplayName: r.DisplayName,
			Description: r.Description,
			Icon:        r.Icon,
		}
	}
	return defs
}

// aggregate joins records against defs and rarity. Every record yields
// exactly one merged entry, in record order.
func aggregate(records []domain.UnlockRecord, defs map[string]domain.AchievementDefinition, rarity domain.GlobalRarity, iconPrefix string) domain.AggregateResult {
	result := domain.EmptyAggregate()
	completed := make([]domain.MergedAchievement, 0, len(records))

	for _, rec := range records {
		merged := domain.MergedAchievement{
			APIName:     rec.APIName,
			Name:        rec.APIName,
			Description: domain.MissingDescription,
			Achieved:    rec.Achieved,
			UnlockTime:  rec.UnlockTime,
			Rarity:      rarity.Lookup(rec.APIName),
		}
		if def, ok := defs[rec.APIName]; ok {
			merged.Name = def.DisplayName
			merged.Description = def.Description
			merged.Icon = qualifyIcon(def.Icon, iconPrefix)
		}

		result.All = append(result.All, merged)
		if merged.Achieved {
			completed = append(completed, merged)
		} else {
			result.Incomplete = append(result.Incomplete, merged)
		}
	}

	result.Completed = len(completed)
	result.Total = len(result.All)
	result.Recent = recentUnlocks(completed, domain.MaxRecentUnlocks)
	return result
}

// recentUnlocks returns up to limit entries, newest unlock first. Equal
// timestamps keep their input order.
func recentUnlocks(completed []domain.MergedAchievement, limit int) []domain.MergedAchievement {
	recent := make([]domain.MergedAchievement, len(completed))
	copy(recent, completed)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].UnlockTime > recent[j].UnlockTime
	})
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent
}

// qualifyIcon prefixes relative icon paths with the CDN base. Absolute and
// protocol-relative URLs and empty values pass through.
func qualifyIcon(icon, prefix string) string {
	if icon == "" || prefix == "" || strings.HasPrefix(icon, "//") {
		return icon
	}
	if u, err := url.Parse(icon); err == nil && u.IsAbs() {
		return icon
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(icon, "/")
}
