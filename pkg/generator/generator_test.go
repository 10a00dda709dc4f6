package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
	"time"

	imagedom "github.com/shouni/gemini-image-kit/ports"
	"github.com/shouni/go-educomic-kit/pkg/domain"
)

// encodePNG はテスト用の単色PNGバイト列を作るのだ。
func encodePNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("PNGエンコードに失敗したのだ: %v", err)
	}
	return buf.Bytes()
}

// renderCall は fakeSession が受け取った1回分の呼び出しを記録するのだ。
type renderCall struct {
	script    string
	grounding *imagedom.ImageResponse
}

// fakeSession は台本テキストをキーに、成功（画像バイト列）か失敗かを返すスタブなのだ。
type fakeSession struct {
	calls     []renderCall
	responses map[string][]byte
	failures  map[string]error
}

func (f *fakeSession) RenderPage(_ context.Context, script string, grounding *imagedom.ImageResponse) (*imagedom.ImageResponse, error) {
	f.calls = append(f.calls, renderCall{script: script, grounding: grounding})
	if err, ok := f.failures[script]; ok {
		return nil, err
	}
	if data, ok := f.responses[script]; ok {
		return &imagedom.ImageResponse{Data: data, MimeType: "image/png"}, nil
	}
	return nil, domain.ErrNoImagePart
}

type fakeFactory struct {
	session  *fakeSession
	sessions int
}

func (f *fakeFactory) NewSession(_ context.Context) (PageImageSession, error) {
	f.sessions++
	return f.session, nil
}

func newTestGenerator(t *testing.T, factory SessionFactory) *ContinuityGenerator {
	t.Helper()
	return NewContinuityGenerator(factory, time.Millisecond, t.TempDir())
}

func TestContinuityGenerator_Generate(t *testing.T) {
	ctx := context.Background()
	req := domain.ScriptRequest{Topic: "Photosynthesis", PageCount: 3, AgeTier: domain.AgeTierKid}
	script := domain.PageScript{1: "[Page 1] one", 2: "[Page 2] two", 3: "[Page 3] three"}

	t.Run("全ページ成功時は順序どおりの画像列になるのだ", func(t *testing.T) {
		session := &fakeSession{responses: map[string][]byte{
			"[Page 1] one":   encodePNG(t, 50, 100, color.RGBA{R: 255, A: 255}),
			"[Page 2] two":   encodePNG(t, 80, 200, color.RGBA{G: 255, A: 255}),
			"[Page 3] three": encodePNG(t, 60, 150, color.RGBA{B: 255, A: 255}),
		}}
		factory := &fakeFactory{session: session}

		images, outcomes, err := newTestGenerator(t, factory).Generate(ctx, req, script)
		if err != nil {
			t.Fatalf("Generate に失敗したのだ: %v", err)
		}
		if factory.sessions != 1 {
			t.Errorf("セッションはリクエストごとに1つのはずなのだ: %d", factory.sessions)
		}
		if len(images) != 3 {
			t.Fatalf("期待 3枚, 実際 %d", len(images))
		}
		for i, img := range images {
			if img.PageIndex != i+1 {
				t.Errorf("ページ順が崩れているのだ: %v", images)
			}
			if _, err := os.Stat(img.Path); err != nil {
				t.Errorf("ページ %d の画像ファイルが存在しないのだ: %v", img.PageIndex, err)
			}
		}
		for _, o := range outcomes {
			if !o.Rendered() {
				t.Errorf("ページ %d が成功扱いになっていないのだ: %+v", o.PageIndex, o)
			}
		}
	})

	t.Run("最初の成功ページには grounding が付かないのだ", func(t *testing.T) {
		session := &fakeSession{responses: map[string][]byte{
			"[Page 1] one":   encodePNG(t, 10, 10, color.RGBA{A: 255}),
			"[Page 2] two":   encodePNG(t, 10, 10, color.RGBA{A: 255}),
			"[Page 3] three": encodePNG(t, 10, 10, color.RGBA{A: 255}),
		}}
		factory := &fakeFactory{session: session}

		if _, _, err := newTestGenerator(t, factory).Generate(ctx, req, script); err != nil {
			t.Fatalf("Generate に失敗したのだ: %v", err)
		}
		if session.calls[0].grounding != nil {
			t.Error("1ページ目に grounding 画像が付いているのだ")
		}
		if session.calls[1].grounding == nil || session.calls[2].grounding == nil {
			t.Error("2ページ目以降に grounding 画像が付いていないのだ")
		}
	})

	t.Run("失敗ページを挟んでも grounding は直近の成功画像を指すのだ", func(t *testing.T) {
		page1 := encodePNG(t, 20, 20, color.RGBA{R: 9, A: 255})
		session := &fakeSession{
			responses: map[string][]byte{
				"[Page 1] one":   page1,
				"[Page 3] three": encodePNG(t, 20, 20, color.RGBA{B: 9, A: 255}),
			},
			failures: map[string]error{
				"[Page 2] two": errors.New("transient failure"),
			},
		}
		factory := &fakeFactory{session: session}

		images, outcomes, err := newTestGenerator(t, factory).Generate(ctx, req, script)
		if err != nil {
			t.Fatalf("Generate に失敗したのだ: %v", err)
		}
		if len(images) != 2 || images[0].PageIndex != 1 || images[1].PageIndex != 3 {
			t.Fatalf("ページ {1,3} の画像列を期待したのだ: %+v", images)
		}

		// ページ3への grounding は、直前(i-1)のページ2ではなく成功済みのページ1であること
		call3 := session.calls[2]
		if call3.grounding == nil || !bytes.Equal(call3.grounding.Data, page1) {
			t.Error("ページ3の grounding が直近の成功画像（ページ1）になっていないのだ")
		}

		var failed int
		for _, o := range outcomes {
			if !o.Skipped && o.Err != nil {
				failed++
			}
		}
		if failed != 1 {
			t.Errorf("失敗 outcome は1件のはずなのだ: %+v", outcomes)
		}
	})

	t.Run("台本に無いページはリクエストすら送らないのだ", func(t *testing.T) {
		sparse := domain.PageScript{1: "[Page 1] one", 3: "[Page 3] three"}
		session := &fakeSession{responses: map[string][]byte{
			"[Page 1] one":   encodePNG(t, 10, 10, color.RGBA{A: 255}),
			"[Page 3] three": encodePNG(t, 10, 10, color.RGBA{A: 255}),
		}}
		factory := &fakeFactory{session: session}

		images, outcomes, err := newTestGenerator(t, factory).Generate(ctx, req, sparse)
		if err != nil {
			t.Fatalf("Generate に失敗したのだ: %v", err)
		}
		if len(session.calls) != 2 {
			t.Errorf("期待 2回の送信, 実際 %d", len(session.calls))
		}
		if len(images) != 2 {
			t.Errorf("期待 2枚, 実際 %d", len(images))
		}
		if !outcomes[1].Skipped {
			t.Errorf("ページ2はスキップ扱いのはずなのだ: %+v", outcomes[1])
		}
	})

	t.Run("全滅したときだけエラーになるのだ", func(t *testing.T) {
		session := &fakeSession{failures: map[string]error{
			"[Page 1] one":   errors.New("boom"),
			"[Page 2] two":   errors.New("boom"),
			"[Page 3] three": errors.New("boom"),
		}}
		factory := &fakeFactory{session: session}

		_, outcomes, err := newTestGenerator(t, factory).Generate(ctx, req, script)
		if !errors.Is(err, domain.ErrNoPagesProduced) {
			t.Fatalf("ErrNoPagesProduced を期待したのだ: %v", err)
		}
		if len(outcomes) != 3 {
			t.Errorf("outcome は3件のはずなのだ: %+v", outcomes)
		}
	})

	t.Run("デコード不能な応答はページ失敗なのだ", func(t *testing.T) {
		session := &fakeSession{responses: map[string][]byte{
			"[Page 1] one": []byte("this is not an image"),
			"[Page 2] two": encodePNG(t, 10, 10, color.RGBA{A: 255}),
		}}
		factory := &fakeFactory{session: session}

		twoPages := domain.ScriptRequest{Topic: "t", PageCount: 2, AgeTier: domain.AgeTierKid}
		images, outcomes, err := newTestGenerator(t, factory).Generate(ctx, twoPages,
			domain.PageScript{1: "[Page 1] one", 2: "[Page 2] two"})
		if err != nil {
			t.Fatalf("Generate に失敗したのだ: %v", err)
		}
		if len(images) != 1 || images[0].PageIndex != 2 {
			t.Fatalf("ページ2だけが成功するはずなのだ: %+v", images)
		}
		if outcomes[0].Err == nil {
			t.Error("ページ1はデコード失敗として記録されるはずなのだ")
		}
	})
}

func TestContinuityGenerator_GroundingAfterLongGap(t *testing.T) {
	// k 成功 → k+1..k+2 失敗 → k+3 成功 でも grounding は k のままであること
	ctx := context.Background()
	req := domain.ScriptRequest{Topic: "gap", PageCount: 4, AgeTier: domain.AgeTierTeen}
	script := domain.PageScript{}
	for i := 1; i <= 4; i++ {
		script[i] = fmt.Sprintf("page-%d", i)
	}

	page1 := encodePNG(t, 10, 10, color.RGBA{R: 1, A: 255})
	session := &fakeSession{
		responses: map[string][]byte{
			"page-1": page1,
			"page-4": encodePNG(t, 10, 10, color.RGBA{R: 4, A: 255}),
		},
		failures: map[string]error{
			"page-2": errors.New("boom"),
			"page-3": errors.New("boom"),
		},
	}
	factory := &fakeFactory{session: session}

	if _, _, err := newTestGenerator(t, factory).Generate(ctx, req, script); err != nil {
		t.Fatalf("Generate に失敗したのだ: %v", err)
	}

	last := session.calls[len(session.calls)-1]
	if last.script != "page-4" {
		t.Fatalf("最後の呼び出しは page-4 のはずなのだ: %q", last.script)
	}
	if last.grounding == nil || !bytes.Equal(last.grounding.Data, page1) {
		t.Error("連続失敗の後でも grounding はページ1を指し続けるはずなのだ")
	}
}
