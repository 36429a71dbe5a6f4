package querytr

import (
	"context"
	"fmt"
	"html"
	"sync"

	translate "cloud.google.com/go/translate"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleTranslator uses Google Cloud Translation and falls back to the
// phrase table whenever the service cannot be reached. The client is
// created on first use and reused until Close.
type GoogleTranslator struct {
	credentials string
	fallback    *PhraseTable
	log         *zap.Logger

	mu     sync.Mutex
	client *translate.Client
}

// NewGoogleTranslator returns a translator authenticated with the given
// service-account file. An empty path uses application default credentials.
func NewGoogleTranslator(credentials string, log *zap.Logger) *GoogleTranslator {
	if log == nil {
		log = zap.NewNop()
	}
	return &GoogleTranslator{
		credentials: credentials,
		fallback:    NewPhraseTable(),
		log:         log,
	}
}

func (g *GoogleTranslator) ToEnglish(ctx context.Context, text string) (string, error) {
	out, err := g.translate(ctx, text)
	if err != nil {
		g.log.Warn("cloud translation failed, using phrase table", zap.Error(err))
		return g.fallback.Replace(text), nil
	}
	return out, nil
}

// Close releases the cloud client, if one was created.
func (g *GoogleTranslator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	return err
}

// clientFor returns the shared client, creating it on first use. A failed
// creation is retried on the next call.
func (g *GoogleTranslator) clientFor(ctx context.Context) (*translate.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}

	var opts []option.ClientOption
	if g.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(g.credentials))
	}
	client, err := translate.NewClient(context.WithoutCancel(ctx), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	g.client = client
	return client, nil
}

func (g *GoogleTranslator) translate(ctx context.Context, text string) (string, error) {
	client, err := g.clientFor(ctx)
	if err != nil {
		return "", err
	}

	translations, err := client.Translate(ctx, []string{text}, language.English, &translate.Options{
		Source: language.Turkish,
		Format: translate.Text,
	})
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	if len(translations) == 0 {
		return "", fmt.Errorf("no translation returned")
	}
	return html.UnescapeString(translations[0].Text), nil
}
