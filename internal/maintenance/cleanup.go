package maintenance

import (
	"context"

	"github.com/dorkyWolfie/qr-generator/internal/logostore"
	"github.com/dorkyWolfie/qr-generator/internal/repository"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Scheduler struct {
	c        *cron.Cron
	log      *zap.Logger
	linkRepo *repository.ShortLinkRepository
	logos    *logostore.Store
}

func NewScheduler(log *zap.Logger, linkRepo *repository.ShortLinkRepository, logos *logostore.Store) *Scheduler {
	// Standard 5-field cron syntax, system location.
	c := cron.New(cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)), cron.WithChain())
	return &Scheduler{c: c, log: log, linkRepo: linkRepo, logos: logos}
}

func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.c.AddFunc("0 3 * * *", func() {
		s.sweepOrphanedLogos()
	})
	if err != nil {
		return err
	}
	s.c.Start()

	go func() {
		<-ctx.Done()
		ctxStop := s.c.Stop()
		<-ctxStop.Done()
	}()
	return nil
}

// sweepOrphanedLogos removes logo files whose owning link was hard-deleted
// while the file removal failed or the process died in between.
func (s *Scheduler) sweepOrphanedLogos() {
	paths, err := s.linkRepo.AllLogoPaths()
	if err != nil {
		s.log.Error("Failed to list referenced logo paths", zap.Error(err))
		return
	}

	referenced := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		referenced[p] = struct{}{}
	}

	removed, err := s.logos.SweepOrphans(referenced)
	if err != nil {
		s.log.Error("Failed to sweep orphaned logos", zap.Error(err))
		return
	}
	if removed > 0 {
		s.log.Info("Removed orphaned logo files", zap.Int("count", removed))
	}
}
