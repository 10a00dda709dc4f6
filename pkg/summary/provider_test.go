package summary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shouni/go-educomic-kit/pkg/domain"
	"github.com/shouni/go-educomic-kit/pkg/prompts"
)

// countingTextGen は呼び出し回数を数えながら固定の要約を返すスタブなのだ。
type countingTextGen struct {
	calls      atomic.Int32
	lastPrompt string
	response   string
}

func (c *countingTextGen) GenerateText(_ context.Context, prompt string) (string, error) {
	c.calls.Add(1)
	c.lastPrompt = prompt
	return c.response, nil
}

func newTestProvider(t *testing.T, gen TextGenerator, limit int) *Provider {
	t.Helper()
	pb, err := prompts.NewTextPromptBuilder()
	if err != nil {
		t.Fatalf("プロンプトビルダーの初期化に失敗したのだ: %v", err)
	}
	return NewProvider(gen, pb, nil, limit)
}

func TestProvider_Resolve(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, &countingTextGen{}, 10000)

	t.Run("空ソースは既定コンテキストなのだ", func(t *testing.T) {
		got, err := p.Resolve(ctx, "")
		if err != nil {
			t.Fatalf("Resolve に失敗したのだ: %v", err)
		}
		if got != DefaultContext {
			t.Errorf("期待 %q, 実際 %q", DefaultContext, got)
		}
	})

	t.Run("生テキストはそのまま通るのだ", func(t *testing.T) {
		got, err := p.Resolve(ctx, "mitochondria facts")
		if err != nil {
			t.Fatalf("Resolve に失敗したのだ: %v", err)
		}
		if got != "mitochondria facts" {
			t.Errorf("期待どおりに返らなかったのだ: %q", got)
		}
	})

	t.Run("@path はファイル内容を読むのだ", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "transcript.txt")
		if err := os.WriteFile(path, []byte("photosynthesis lecture"), 0o644); err != nil {
			t.Fatal(err)
		}
		got, err := p.Resolve(ctx, "@"+path)
		if err != nil {
			t.Fatalf("Resolve に失敗したのだ: %v", err)
		}
		if got != "photosynthesis lecture" {
			t.Errorf("ファイル内容が返らなかったのだ: %q", got)
		}
	})

	t.Run("URL はボディを取得するのだ", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("web context"))
		}))
		defer srv.Close()

		got, err := p.Resolve(ctx, srv.URL)
		if err != nil {
			t.Fatalf("Resolve に失敗したのだ: %v", err)
		}
		if got != "web context" {
			t.Errorf("期待 web context, 実際 %q", got)
		}
	})

	t.Run("HTTPエラーは失敗として返るのだ", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		if _, err := p.Resolve(ctx, srv.URL); err == nil {
			t.Error("エラーを期待したのだ")
		}
	})
}

func TestProvider_Summarize(t *testing.T) {
	ctx := context.Background()

	t.Run("同一ソースIDの要約はキャッシュされるのだ", func(t *testing.T) {
		gen := &countingTextGen{response: "kid-friendly summary"}
		p := newTestProvider(t, gen, 10000)

		first, err := p.Summarize(ctx, "video-abc", "long transcript", domain.AgeTierKid)
		if err != nil {
			t.Fatalf("Summarize に失敗したのだ: %v", err)
		}
		second, err := p.Summarize(ctx, "video-abc", "long transcript", domain.AgeTierKid)
		if err != nil {
			t.Fatalf("2回目の Summarize に失敗したのだ: %v", err)
		}

		if first != second || first != "kid-friendly summary" {
			t.Errorf("要約結果が一致しないのだ: %q / %q", first, second)
		}
		if got := gen.calls.Load(); got != 1 {
			t.Errorf("モデル呼び出しは1回のはずなのだ: %d", got)
		}
	})

	t.Run("年齢層が違えば別エントリなのだ", func(t *testing.T) {
		gen := &countingTextGen{response: "summary"}
		p := newTestProvider(t, gen, 10000)

		if _, err := p.Summarize(ctx, "video-x", "t", domain.AgeTierKid); err != nil {
			t.Fatal(err)
		}
		if _, err := p.Summarize(ctx, "video-x", "t", domain.AgeTierTeen); err != nil {
			t.Fatal(err)
		}
		if got := gen.calls.Load(); got != 2 {
			t.Errorf("層ごとに生成されるはずなのだ: %d", got)
		}
	})

	t.Run("文字起こしは上限まで切り詰めて埋め込むのだ", func(t *testing.T) {
		gen := &countingTextGen{response: "summary"}
		p := newTestProvider(t, gen, 50)

		long := strings.Repeat("a", 200)
		if _, err := p.Summarize(ctx, "video-long", long, domain.AgeTierKid); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(gen.lastPrompt, strings.Repeat("a", 51)) {
			t.Error("文字起こしが切り詰められていないのだ")
		}
		if !strings.Contains(gen.lastPrompt, "6-10 year old") {
			t.Errorf("年齢レンジがプロンプトに埋まっていないのだ:\n%s", gen.lastPrompt)
		}
	})
}
