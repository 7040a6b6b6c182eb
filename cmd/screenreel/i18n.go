// Package main provides localization for the screenreel CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Output":            "出力",
		"Animation":         "アニメーション",
		"Video and Quality": "動画と品質",
		"Export Quota":      "エクスポート上限",
		"Debug":             "デバッグ",
		"Logging":           "ログ",

		// Root command
		"Turn screenshots into animated videos": "スクリーンショットをアニメーション動画に変換",
		"screenreel animates each image with a camera move and encodes the result as MP4 or WebM.": "screenreelは各画像にカメラワークを付けてアニメーションし、MP4またはWebMとしてエンコードします。",

		// Render command
		"Render images into an animated video": "画像をアニメーション動画にレンダリング",
		"Render the images given as arguments, or the images of a job file, into one video. Animation flags apply to every image.": "引数の画像またはジョブファイルの画像を1本の動画にレンダリングします。アニメーションのフラグはすべての画像に適用されます。",
		"an output path is required (--output)": "出力パスが必要です (--output)",

		// Output flags
		"YAML job file": "YAMLジョブファイル",
		"Output video path (required unless set in the job file)": "出力動画のパス（ジョブファイルで指定しない場合は必須）",
		"Write a Markdown summary to this path":                    "Markdownのサマリーをこのパスに書き出す",

		// Animation flags
		"Seconds per image (1-10)":                    "画像あたりの秒数（1-10）",
		"Animation type (see the animations command)": "アニメーションの種類（animationsコマンドを参照）",
		"Easing (smooth, linear)":                     "イージング（smooth, linear）",
		"Travel multiplier (0.5-2.0)":                 "移動量の倍率（0.5-2.0）",
		"Start distance multiplier (1.2-5.0)":         "開始距離の倍率（1.2-5.0）",
		"Tilt in degrees (-50 to 50)":                 "傾き（度、-50〜50）",
		"X rotation in degrees (-30 to 30)":           "X軸回転（度、-30〜30）",
		"Y rotation in degrees (-30 to 30)":           "Y軸回転（度、-30〜30）",
		"Background color (hex, e.g., #f8f9fa)":       "背景色（16進数、例: #f8f9fa）",
		"Enable radial blur":                          "放射状ブラーを有効にする",
		"Blur intensity (0-1)":                        "ブラーの強さ（0-1）",
		"Blur radius (0.1-0.9)":                       "ブラーの半径（0.1-0.9）",

		// Video flags
		"Quality preset (ultra, high, medium, low)":                        "品質プリセット（ultra, high, medium, low）",
		"Container (mp4, webm)":                                            "コンテナ（mp4, webm）",
		"Encoder quality (0-63, lower is better, 0 for the codec default)": "エンコード品質（0-63、低いほど高品質、0でコーデックの既定値）",
		"Frames rendered per batch":                                        "バッチごとにレンダリングするフレーム数",
		"Encoder timing (virtual, wallclock)":                              "エンコードのタイミング（virtual, wallclock）",
		"Rasterizer workers (default: CPU count)":                          "ラスタライザのワーカー数（デフォルト: CPU数）",
		"Path to ffmpeg (falls back to FFMPEG_PATH, then PATH)":            "ffmpegのパス（未指定時はFFMPEG_PATH、PATHの順に検索）",

		// Quota flags
		"User to account the export to (default: SCREENREEL_USER, then USER)": "エクスポートを記録するユーザー（デフォルト: SCREENREEL_USER、次にUSER）",
		"Exports allowed per user (0 = unlimited)":                            "ユーザーあたりのエクスポート上限（0 = 無制限）",
		"TOML file that keeps export counts between runs":                     "実行間でエクスポート回数を保持するTOMLファイル",

		// Debug and logging flags
		"Save the job and every frame":         "ジョブと全フレームを保存する",
		"Directory for debug output":           "デバッグ出力のディレクトリ",
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Suppress all log output":              "すべてのログ出力を抑制",

		// Listing commands
		"List quality presets":  "品質プリセットの一覧",
		"List animation types":  "アニメーションの種類の一覧",
		"Preset":                "プリセット",
		"Resolution":            "解像度",
		"Bitrate":               "ビットレート",
		"Motion":                "動き",

		"Rises from below":                 "下からせり上がる",
		"Moves straight toward the camera": "カメラに向かってまっすぐ近づく",
		"Rises while drifting left":        "左へ流れながらせり上がる",
		"Rises while drifting right":       "右へ流れながらせり上がる",
		"Slides upward":                    "上へスライドする",
		"Slides downward":                  "下へスライドする",
		"Sweeps left along an S curve":     "S字を描いて左へ流れる",
		"Sweeps right along an S curve":    "S字を描いて右へ流れる",
		"Sweeps up along an S curve":       "S字を描いて上へ流れる",
		"Sweeps down along an S curve":     "S字を描いて下へ流れる",

		// Summary
		"Export Summary": "エクスポートサマリー",
		"Generated":      "生成日時",
		"Video":          "動画",
		"Images":         "画像",
		"Item":           "項目",
		"Value":          "値",
		"File":           "ファイル",
		"Type":           "形式",
		"Frames":         "フレーム数",
		"Duration":       "長さ",
		"File Size":      "ファイルサイズ",
		"Name":           "名前",
		"Easing":         "イージング",
		"Blur":           "ブラー",
		"On":             "オン",
		"Off":            "オフ",
		"Quota":          "エクスポート上限",
		"Exports used":   "エクスポート回数",
	})
}
