package bootstrap

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/wolfman30/telehealth-ussd/internal/archive"
	appconfig "github.com/wolfman30/telehealth-ussd/internal/config"
	"github.com/wolfman30/telehealth-ussd/internal/interactions"
	"github.com/wolfman30/telehealth-ussd/internal/ussd"
	"github.com/wolfman30/telehealth-ussd/pkg/logging"
)

// BuildTranscriptArchiver returns nil unless TRANSCRIPT_ARCHIVE_BUCKET is set
// and an interaction log is available to build transcripts from.
func BuildTranscriptArchiver(cfg *appconfig.Config, awsCfg aws.Config, history *interactions.Store, logger *logging.Logger) ussd.SessionArchiver {
	if cfg == nil || strings.TrimSpace(cfg.TranscriptBucket) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if history == nil {
		logger.Warn("transcript archive disabled: interaction log not configured", "bucket", cfg.TranscriptBucket)
		return nil
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// LocalStack serves buckets on the path, not a subdomain.
		o.UsePathStyle = cfg.AWSEndpointOverride != ""
	})
	archiver := archive.NewArchiver(archive.NewStore(client, cfg.TranscriptBucket, logger), history, logger)
	logger.Info("transcript archive enabled", "bucket", cfg.TranscriptBucket)
	return archiver
}
