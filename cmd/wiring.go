package cmd

import (
	"github.com/sirupsen/logrus"

	"github.com/pulseroom/meeting-pipeline/analysis"
	"github.com/pulseroom/meeting-pipeline/clients"
	"github.com/pulseroom/meeting-pipeline/config"
	"github.com/pulseroom/meeting-pipeline/metrics"
	"github.com/pulseroom/meeting-pipeline/orchestrator"
	"github.com/pulseroom/meeting-pipeline/store"
	"github.com/pulseroom/meeting-pipeline/transcript"
)

// buildRegistry wires the capability set from configuration.
func buildRegistry(cfg *config.Config, log *logrus.Entry) (analysis.Registry, error) {
	h := clients.NewHTTP(cfg.Services.TimeoutDuration(), cfg.Services.MaxConcurrentCalls)

	buckets := analysis.DefaultTopicBuckets()
	if cfg.Topics.BucketsFile != "" {
		loaded, err := analysis.LoadTopicBuckets(cfg.Topics.BucketsFile)
		if err != nil {
			return analysis.Registry{}, err
		}
		buckets = loaded
	}
	keyword := analysis.NewKeywordTagger(buckets)

	var tagger analysis.TopicTagger = keyword
	if cfg.Services.Topics.URL != "" {
		names := make([]string, 0, len(buckets))
		for _, b := range buckets {
			names = append(names, b.Name)
		}
		tagger = &clients.RemoteTagger{
			HTTP:       h,
			URL:        cfg.Services.Topics.URL,
			Candidates: names,
			Fallback:   keyword,
			Log:        log,
		}
	}

	var asr analysis.Transcriber
	if cfg.Services.ASR.URL != "" {
		asr = &clients.ASRTranscriber{HTTP: h, URL: cfg.Services.ASR.URL}
	}

	return analysis.Registry{
		Transcriber: transcript.Router{ASR: asr},
		Sentiment:   clients.NewSentimentClassifier(h, cfg.Services.Sentiment.URL),
		Question:    clients.NewQuestionClassifier(h, cfg.Services.Question.URL),
		Emotion:     clients.NewEmotionClassifier(h, cfg.Services.Emotion.URL),
		Topics:      tagger,
	}, nil
}

// buildPipeline assembles the orchestrator with store and metrics.
func buildPipeline(cfg *config.Config, log *logrus.Entry) (*orchestrator.Pipeline, store.Store, *metrics.Metrics, error) {
	reg, err := buildRegistry(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}

	var st store.Store = store.NewMemory()
	if cfg.Redis.Enabled {
		st = store.NewRedis(store.RedisOptions{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	met := metrics.NewMetrics()
	p := orchestrator.NewPipeline(reg, cfg.Pipeline, log,
		orchestrator.WithStore(st),
		orchestrator.WithMetrics(met),
	)
	return p, st, met, nil
}
