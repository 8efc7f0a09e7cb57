package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"hireflow/internal/app"
	"hireflow/internal/config"
	"hireflow/internal/infrastructure/gmail"
	uccandidate "hireflow/internal/usecase/candidate"

	"github.com/google/uuid"
)

func main() {
	jobFlag := flag.String("job", "", "job id to attach candidates to")
	userFlag := flag.String("user", "", "owner of the job")
	subject := flag.String("subject", "", "Gmail subject filter")
	query := flag.String("query", "", "raw Gmail search query, combined with -subject")
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	jobID, err := uuid.Parse(strings.TrimSpace(*jobFlag))
	if err != nil {
		logger.Fatalf("invalid -job: %v", err)
	}
	userID, err := uuid.Parse(strings.TrimSpace(*userFlag))
	if err != nil {
		logger.Fatalf("invalid -user: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	c, err := app.NewContainer(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init container: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = c.Close(ctx)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, err := gmail.NewClient(ctx, cfg.Gmail, os.Stdin, os.Stderr, logger)
	if err != nil {
		logger.Fatalf("gmail: %v", err)
	}

	q := searchQuery(*subject, *query)
	atts, err := client.Attachments(ctx, q)
	if err != nil {
		logger.Fatalf("gmail: %v", err)
	}
	logger.Printf("gmail_import query=%q attachments=%d", q, len(atts))
	if len(atts) == 0 {
		return
	}

	created, outcome, err := c.Candidates.Upload(ctx, userID, jobID, uploads(atts))
	if err != nil {
		logger.Fatalf("ingest: %v", err)
	}
	logger.Printf("gmail_import job_id=%s created=%d failed=%d", jobID, len(created), len(outcome.Failed))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcome); err != nil {
		logger.Fatalf("encode outcome: %v", err)
	}
}

func searchQuery(subject, raw string) string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(subject); s != "" {
		parts = append(parts, fmt.Sprintf("subject:(%s)", s))
	}
	if r := strings.TrimSpace(raw); r != "" {
		parts = append(parts, r)
	}
	return strings.Join(parts, " ")
}

// uploads keeps the sender's display name as a name hint for attachments
// whose filename carries none.
func uploads(atts []gmail.Attachment) []uccandidate.Upload {
	out := make([]uccandidate.Upload, 0, len(atts))
	for _, a := range atts {
		out = append(out, uccandidate.Upload{Filename: a.Filename, Data: a.Data, NameHint: a.Sender})
	}
	return out
}
