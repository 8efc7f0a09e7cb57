package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"hireflow/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const user = "me"

// Attachment is one downloaded mail attachment.
type Attachment struct {
	MessageID string
	Sender    string
	Filename  string
	Data      []byte
}

type Client struct {
	svc    *gmailapi.Service
	logger *log.Logger
}

// NewClient builds a read-only Gmail client. When the token file is missing
// the OAuth consent URL is printed to out and the code is read from in.
func NewClient(ctx context.Context, cfg config.GmailConfig, in io.Reader, out io.Writer, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.Default()
	}

	b, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}
	oc, err := google.ConfigFromJSON(b, gmailapi.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	tok, err := tokenFromFile(cfg.TokenFile)
	if err != nil {
		tok, err = tokenFromPrompt(ctx, oc, in, out)
		if err != nil {
			return nil, err
		}
		if err := saveToken(cfg.TokenFile, tok); err != nil {
			logger.Printf("gmail_token status=not_saved path=%s err=%v", cfg.TokenFile, err)
		}
	}

	svc, err := gmailapi.NewService(ctx, option.WithHTTPClient(oc.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail client: %w", err)
	}
	return &Client{svc: svc, logger: logger}, nil
}

// Attachments downloads every attachment of messages matching query
// (Gmail search syntax). Individual failures are logged and skipped.
func (c *Client) Attachments(ctx context.Context, query string) ([]Attachment, error) {
	q := strings.TrimSpace(query)
	if !strings.Contains(q, "has:attachment") {
		q = strings.TrimSpace(q + " has:attachment")
	}

	list, err := c.svc.Users.Messages.List(user).Q(q).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve messages: %w", err)
	}

	var out []Attachment
	for _, m := range list.Messages {
		msg, err := c.svc.Users.Messages.Get(user, m.Id).Context(ctx).Do()
		if err != nil {
			c.logger.Printf("gmail_message id=%s status=error err=%v", m.Id, err)
			continue
		}
		if msg.Payload == nil {
			continue
		}
		sender := senderName(msg)

		for _, part := range flattenParts(msg.Payload) {
			if part.Filename == "" || part.Body == nil || part.Body.AttachmentId == "" {
				continue
			}
			att, err := c.svc.Users.Messages.Attachments.Get(user, m.Id, part.Body.AttachmentId).Context(ctx).Do()
			if err != nil {
				c.logger.Printf("gmail_attachment message_id=%s file=%q status=error err=%v", m.Id, part.Filename, err)
				continue
			}
			data, err := base64.URLEncoding.DecodeString(att.Data)
			if err != nil {
				c.logger.Printf("gmail_attachment message_id=%s file=%q status=decode_error err=%v", m.Id, part.Filename, err)
				continue
			}
			out = append(out, Attachment{
				MessageID: m.Id,
				Sender:    sender,
				Filename:  part.Filename,
				Data:      data,
			})
		}
	}
	return out, nil
}

func flattenParts(p *gmailapi.MessagePart) []*gmailapi.MessagePart {
	if p == nil {
		return nil
	}
	out := []*gmailapi.MessagePart{p}
	for _, child := range p.Parts {
		out = append(out, flattenParts(child)...)
	}
	return out
}

// senderName returns the display name of the From header, or the local part
// of the address when no display name is present.
func senderName(msg *gmailapi.Message) string {
	for _, h := range msg.Payload.Headers {
		if !strings.EqualFold(h.Name, "From") {
			continue
		}
		return parseSender(h.Value)
	}
	return ""
}

func parseSender(from string) string {
	from = strings.TrimSpace(from)
	if idx := strings.Index(from, "<"); idx > 0 {
		return strings.Trim(strings.TrimSpace(from[:idx]), `"`)
	}
	if idx := strings.Index(from, "@"); idx > 0 {
		return strings.TrimPrefix(from[:idx], "<")
	}
	return ""
}

func tokenFromPrompt(ctx context.Context, oc *oauth2.Config, in io.Reader, out io.Writer) (*oauth2.Token, error) {
	if in == nil || out == nil {
		return nil, errors.New("gmail token missing and no terminal to authorize")
	}
	authURL := oc.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Go to the following link in your browser then type the authorization code:\n%v\n", authURL)

	var code string
	if _, err := fmt.Fscan(in, &code); err != nil {
		return nil, fmt.Errorf("unable to read authorization code: %w", err)
	}
	tok, err := oc.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web: %w", err)
	}
	return tok, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}
