package domain

import "fmt"

// AgeTier は読者の年齢層を表す列挙値です。
// 年齢層ごとの演出指示（ペルソナ・画風・テンポ・トーン）は
// styleBundles のルックアップテーブルで一括管理し、分岐ロジックは持ちません。
type AgeTier string

const (
	AgeTierToddler AgeTier = "toddler"
	AgeTierKid     AgeTier = "kid"
	AgeTierTeen    AgeTier = "teen"
)

// StyleBundle は年齢層に紐づく固定の演出指示セットです。
type StyleBundle struct {
	Role   string // AIに与えるペルソナ（イラストレーターの役割）
	Style  string // 画風の指示
	Pacing string // 1ページあたりのコマ数・テンポ
	Tone   string // 語り口・トーン
}

// ageRanges は各層の対象年齢レンジ（出力ファイル名やプロンプトで使う表記）なのだ。
var ageRanges = map[AgeTier]string{
	AgeTierToddler: "2-5",
	AgeTierKid:     "6-10",
	AgeTierTeen:    "11+",
}

// styleBundles は年齢層ごとの演出指示のルックアップテーブルです。
// 新しい層を追加するときは、ここに1エントリ足すだけで済むようにしてあります。
var styleBundles = map[AgeTier]StyleBundle{
	AgeTierToddler: {
		Role:   "You are an illustrator for nursery rhymes and toddler picture books.",
		Style:  "Visual Style: Bright primary colors, flat vector art, thick outlines. Cute, rounded characters (animals or soft shapes). No scary elements.",
		Pacing: "Pacing: Very slow, 1-2 big panels per page.",
		Tone:   "Tone: Joyous, musical, repetitive, very simple words.",
	},
	AgeTierKid: {
		Role:   "You are a creator of popular Saturday Morning Cartoons.",
		Style:  "Visual Style: Vibrant, energetic, dynamic poses, expressive faces. Relatable kid characters or superheroes.",
		Pacing: "Pacing: Dynamic, 3-4 panels per page.",
		Tone:   "Tone: Fun, adventurous, exciting, jokes, fun facts.",
	},
	AgeTierTeen: {
		Role:   "You are a professional Manga artist.",
		Style:  "Visual Style: High-quality Manga/Anime style, detailed backgrounds, screen tones.",
		Pacing: "Pacing: Cinematic, 4-6 panels per page.",
		Tone:   "Tone: Witty, cool, intellectual but accessible.",
	},
}

// ParseAgeTier は文字列（層の名前または年齢レンジ表記）から AgeTier を解決します。
func ParseAgeTier(s string) (AgeTier, error) {
	tier := AgeTier(s)
	if _, ok := styleBundles[tier]; ok {
		return tier, nil
	}
	for t, r := range ageRanges {
		if s == r {
			return t, nil
		}
	}
	return "", fmt.Errorf("不明な年齢層です: %q (toddler / kid / teen のいずれかを指定してほしいのだ)", s)
}

// Valid は既知の年齢層かどうかを返します。
func (t AgeTier) Valid() bool {
	_, ok := styleBundles[t]
	return ok
}

// Range は対象年齢のレンジ表記（例: "6-10"）を返します。
func (t AgeTier) Range() string {
	return ageRanges[t]
}

// Bundle は年齢層に対応する演出指示セットを返します。
// 未知の層の場合はゼロ値を返すため、呼び出し側は事前に Valid で検証してください。
func (t AgeTier) Bundle() StyleBundle {
	return styleBundles[t]
}
