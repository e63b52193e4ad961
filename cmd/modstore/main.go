package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/wavechat/modstore/internal/config"
	"github.com/wavechat/modstore/internal/event"
	"github.com/wavechat/modstore/internal/infra"
	"github.com/wavechat/modstore/internal/lifecycle"
	"github.com/wavechat/modstore/internal/moderation"
	"github.com/wavechat/modstore/internal/observability"
	"github.com/wavechat/modstore/internal/policy"
	"github.com/wavechat/modstore/internal/store/sqlite"
)

const topRiskReviewSize = 10

func main() {
	cfg := config.Get()
	log.SetFormatter(&config.MsFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.Level(cfg.LogLevel))

	ctx, cancelFunc := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancelFunc()

	if err := observability.Init(ctx); err != nil {
		log.WithError(err).Fatalln("cant initialize observability")
	}
	defer event.RunWorker()()

	thresholds, err := policy.Load(cfg.PolicyPath)
	if err != nil {
		log.WithError(err).Fatalln("cant load policy")
	}

	client, err := sqlite.NewSQLiteClient(ctx, infra.GetWorkDir(), cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatalln("cant open store")
	}

	service := moderation.NewService(client, thresholds)

	event.Subscribe(event.TypeRiskChanged, func(e event.Queueable) {
		rc, ok := e.(*event.RiskChanged)
		if !ok {
			return
		}
		defer rc.Process()
		log.WithField("user_id", rc.UserID).
			WithField("risk_score", rc.RiskScore).
			WithField("action", rc.SuggestedAction).
			Info("risk score changed")
	})

	runtime := lifecycle.NewRuntime(
		observability.NewMetricsServer(cfg.MetricsAddr),
		closerComponent{client},
	)
	if err := runtime.Start(ctx); err != nil {
		log.WithError(err).Fatalln("cant start runtime")
	}

	logTopRisk(ctx, service)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-gctx.Done():
			return gctx.Err()
		case <-infra.MonitorExecutable(gctx):
			log.Errorln("executable file was modified")
			return nil
		}
	})
	if err := g.Wait(); err != nil && err != context.Canceled {
		log.WithError(err).Errorln("no more updates")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := runtime.Stop(stopCtx); err != nil {
		log.WithError(err).Errorln("cant stop runtime cleanly")
	}
	os.Exit(0)
}

// logTopRisk dumps the highest-risk users at startup so operators get a
// review queue without querying the database by hand.
func logTopRisk(ctx context.Context, service *moderation.Service) {
	users, err := service.TopRisk(ctx, topRiskReviewSize)
	if err != nil {
		log.WithError(err).Warnln("cant list top risk users")
		return
	}
	for _, u := range users {
		log.WithField("user_id", u.UserID).
			WithField("risk_score", u.RiskScore).
			WithField("banned", u.Banned).
			WithField("suspended", u.Suspended).
			Debug("top risk user")
	}
}

type closerComponent struct {
	io.Closer
}

func (c closerComponent) Start(context.Context) error { return nil }
func (c closerComponent) Stop(context.Context) error  { return c.Close() }
