package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Exporting %d images (%s preset, %dx%d at %d fps)": "%d 枚の画像をエクスポート中 (%s プリセット, %dx%d, %d fps)",
		"Processing frames %d to %d of %d...":              "フレーム %d から %d を処理中 (全 %d)...",
		"Encoding video...":                                "動画をエンコード中...",
		"Video encoded: %d bytes":                          "動画エンコード完了: %d バイト",
		"Output saved to %s":                               "出力を %s に保存しました",
		"Exports used: %d of %d":                           "エクスポート回数: %d / %d",
		"Interrupted, shutting down...":                    "中断されました。シャットダウン中...",

		// Scene
		"Render context created: %dx%d": "レンダーコンテキストを作成: %dx%d",
		"Render context released":       "レンダーコンテキストを解放しました",
		"Decoded image %d: %dx%d":       "画像 %d をデコード: %dx%d",

		// Render stage
		"Rendering %d frames in batches of %d": "%d フレームを %d 枚ずつレンダリング中",

		// Encode stage
		"Negotiated %s at %d bps":                             "%s を %d bps で使用します",
		"Container probe failed, using computed duration: %s": "コンテナの解析に失敗しました。計算した長さを使用します: %s",

		// Debug
		"Memory check skipped: %s": "メモリチェックをスキップしました: %s",

		// Warnings
		"Image %d failed to decode, retrying: %s":                 "画像 %d のデコードに失敗しました。再試行します: %s",
		"Frames need about %d MiB but only %d MiB is available":   "フレームに約 %d MiB 必要ですが、利用可能なのは %d MiB です",
		"Encoded as %s but saving with %s extension":              "%s でエンコードしましたが、拡張子 %s で保存します",
		"Image %d asks for %s quality; the video uses %s from image 1": "画像 %d は %s 品質を指定していますが、動画は画像 1 の %s を使います",
		"Texture upload for image %d failed, retrying: %s":        "画像 %d のテクスチャ転送に失敗しました。再試行します: %s",
		"Failed to close render context: %s":                      "レンダーコンテキストのクローズに失敗しました: %s",
		"Failed to record export usage: %s":                       "エクスポート回数の記録に失敗しました: %s",
		"Failed to release quota reservation: %s":                 "クォータ予約の解放に失敗しました: %s",
		"Failed to release render context: %s":                    "レンダーコンテキストの解放に失敗しました: %s",
		"Failed to save debug output: %s":                         "デバッグ出力の保存に失敗しました: %s",

		// Errors
		"Export refused: %s":         "エクスポートが拒否されました: %s",
		"Failed to render frames: %s": "フレームのレンダリングに失敗しました: %s",
		"Failed to encode video: %s": "動画のエンコードに失敗しました: %s",
		"Failed to write output: %s": "出力の書き込みに失敗しました: %s",
	})
}
