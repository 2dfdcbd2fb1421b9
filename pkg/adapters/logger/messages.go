package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Compile level messages (info)
		"Compiling %q: %d scenes":              "%q をコンパイル中: %d シーン",
		"Recording %s at %dx%d, %d fps":        "%s を %dx%d、%d fps で記録中",
		"Planned %d scenes, %d frames":         "%d シーン、%d フレームを計画しました",
		"Scene %d rendered: %d frames (%.2fs)": "シーン %d をレンダリングしました: %d フレーム (%.2f秒)",
		"Compile finished: %d frames, %d bytes": "コンパイル完了: %d フレーム、%d バイト",
		"Compile cancelled":                    "コンパイルがキャンセルされました",
		"Compile failed: %v":                   "コンパイルに失敗しました: %v",

		// Progress messages
		"Starting compile":         "コンパイルを開始します",
		"Loading scene %d of %d":   "シーン %d / %d を読み込み中",
		"Rendering scene %d of %d": "シーン %d / %d をレンダリング中",
		"Finalizing output":        "出力を仕上げています",
		"Compiled %d frames (%s)":  "%d フレームをコンパイルしました (%s)",

		// Scene degradation (warn)
		"Scene %s has both an image and a video, using the video": "シーン %s に画像と動画の両方があります。動画を使用します",
		"Skipping scene %d (%s): %v":                              "シーン %d (%s) をスキップします: %v",
		"Scene %d narration unusable, using %.1fs of silence: %v": "シーン %d のナレーションが使用できないため、%.1f秒の無音を使用します: %v",
		"Scene %d: %v": "シーン %d: %v",

		// Prepare stage
		"Scene %d has no visual":               "シーン %d にビジュアルがありません",
		"Scene %d visual failed: %v":           "シーン %d のビジュアル読み込みに失敗しました: %v",
		"Scene %d narration: %.2fs, %d frames": "シーン %d のナレーション: %.2f秒、%d フレーム",
		"Scene %d is silent: %.2fs, %d frames": "シーン %d は無音です: %.2f秒、%d フレーム",

		// Render stage
		"Rendering scene %d: %d frames":   "シーン %d をレンダリング中: %d フレーム",
		"Failed to save scene frame: %v":  "シーンフレームの保存に失敗しました: %v",
		"Failed to close visual of scene %d: %v": "シーン %d のビジュアルを閉じられませんでした: %v",

		// Visual loader
		"Loaded image %s (%dx%d)": "画像 %s を読み込みました (%dx%d)",
		"Video %s ready":          "動画 %s の準備ができました",

		// Capture
		"Format %s not available, falling back to %s":                 "形式 %s は利用できません。%s にフォールバックします",
		"Backend %s cannot record %s, trying next":                    "バックエンド %s は %s を記録できません。次を試します",
		"Recording %s with %s backend":                                "%s を %s バックエンドで記録中",
		"Started ffmpeg session: %s %dx%d@%d":                         "ffmpeg セッションを開始しました: %s %dx%d@%d",
		"ffmpeg session finished: %d frames, %d bytes":                "ffmpeg セッション完了: %d フレーム、%d バイト",
		"ffmpeg session aborted":                                      "ffmpeg セッションを中止しました",
		"Started AVI session: %dx%d@%d, JPEG quality %d":              "AVI セッションを開始しました: %dx%d@%d、JPEG品質 %d",
		"AVI session finished: %d frames, %d audio samples, %d bytes": "AVI セッション完了: %d フレーム、%d 音声サンプル、%d バイト",
		"AVI session aborted":                                         "AVI セッションを中止しました",
		"Encoder probe failed: %v":                                    "エンコーダーの確認に失敗しました: %v",
		"Failed to abort capture: %v":                                 "キャプチャの中止に失敗しました: %v",

		// Debug output
		"Failed to encode timeline: %v": "タイムラインのエンコードに失敗しました: %v",
		"Failed to save timeline: %v":   "タイムラインの保存に失敗しました: %v",

		// Server
		"Listening on %s":                  "%s で待ち受け中",
		"Job %s accepted: %q, %d scenes":   "ジョブ %s を受け付けました: %q、%d シーン",
		"Job %s done: %d frames":           "ジョブ %s 完了: %d フレーム",
		"Job %s ended %s: %v":              "ジョブ %s は %s で終了しました: %v",
		"Job %s cancel requested":          "ジョブ %s のキャンセルを要求しました",
		"Job %s expired":                   "ジョブ %s は保持期間を過ぎたため削除しました",
		"Job %s evicted":                   "ジョブ %s は保持上限を超えたため削除しました",
	})
}
