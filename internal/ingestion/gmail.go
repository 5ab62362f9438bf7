// Package ingestion pulls job offer PDFs into the intake directory from
// external sources, currently Gmail.
package ingestion

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailFetcher downloads PDF attachments from the user's mailbox into the
// new-offers directory.
type GmailFetcher struct {
	service *gmail.Service
	destDir string
}

// NewGmailFetcher creates a Gmail fetcher. credentialsPath is the OAuth
// client file, tokenPath caches the granted token between runs.
func NewGmailFetcher(ctx context.Context, credentialsPath, tokenPath, destDir string) (*GmailFetcher, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	client, err := getClient(ctx, config, tokenPath)
	if err != nil {
		return nil, err
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail client: %w", err)
	}

	return &GmailFetcher{
		service: srv,
		destDir: destDir,
	}, nil
}

// getClient builds an authenticated HTTP client from the cached token,
// falling back to the browser consent flow.
func getClient(ctx context.Context, config *oauth2.Config, tokenPath string) (*http.Client, error) {
	tok, err := tokenFromFile(tokenPath)
	if err != nil {
		tok, err = getTokenFromWeb(ctx, config)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokenPath, tok); err != nil {
			log.Printf("Unable to cache oauth token: %v", err)
		}
	}
	return config.Client(ctx, tok), nil
}

// getTokenFromWeb requests a token interactively.
func getTokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser then type the authorization code: \n%v\n", authURL)

	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		return nil, fmt.Errorf("unable to read authorization code: %w", err)
	}

	tok, err := config.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web: %w", err)
	}
	return tok, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// FetchOffers downloads PDF attachments from messages matching query into
// the new-offers directory. Files already present are skipped. Returns the
// number of PDFs written.
func (g *GmailFetcher) FetchOffers(query string) (int, error) {
	if err := os.MkdirAll(g.destDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create offers directory: %w", err)
	}

	user := "me"
	if query == "" {
		query = "has:attachment filename:pdf"
	} else {
		query = query + " has:attachment filename:pdf"
	}

	r, err := g.service.Users.Messages.List(user).Q(query).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to retrieve messages: %w", err)
	}

	fetched := 0
	for _, msg := range r.Messages {
		message, err := g.service.Users.Messages.Get(user, msg.Id).Do()
		if err != nil {
			log.Printf("Unable to retrieve message %s: %v", msg.Id, err)
			continue
		}

		for _, part := range message.Payload.Parts {
			if part.Filename == "" || part.Body == nil || part.Body.AttachmentId == "" {
				continue
			}
			if !strings.EqualFold(filepath.Ext(part.Filename), ".pdf") {
				continue
			}

			destPath := filepath.Join(g.destDir, filepath.Base(part.Filename))
			if _, err := os.Stat(destPath); err == nil {
				log.Printf("Skipping %s: already present", part.Filename)
				continue
			}

			attachment, err := g.service.Users.Messages.Attachments.Get(user, msg.Id, part.Body.AttachmentId).Do()
			if err != nil {
				log.Printf("Unable to retrieve attachment %s: %v", part.Filename, err)
				continue
			}

			data, err := base64.URLEncoding.DecodeString(attachment.Data)
			if err != nil {
				log.Printf("Unable to decode attachment %s: %v", part.Filename, err)
				continue
			}

			if err := os.WriteFile(destPath, data, 0644); err != nil {
				log.Printf("Unable to write file %s: %v", destPath, err)
				continue
			}

			log.Printf("Downloaded offer: %s", filepath.Base(destPath))
			fetched++
		}
	}

	return fetched, nil
}
