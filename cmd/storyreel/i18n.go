// Package main provides localization for the storyreel CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Output":            "出力先",
		"Video and Quality": "動画と品質",
		"Narration":         "ナレーション",
		"Style":             "スタイル",
		"Visuals":           "ビジュアル",
		"Server":            "サーバー",
		"Debug":             "デバッグ",
		"Logging":           "ログ",

		// Root command
		"Compile narrated scenes into a video": "ナレーション付きのシーンを動画にコンパイル",
		"storyreel renders a story of images, video clips and narration into one captioned video.": "storyreelは画像、動画クリップ、ナレーションからなるストーリーを字幕付きの1本の動画にレンダリングします。",

		// Compile command
		"Compile a story file into a video": "ストーリーファイルを動画にコンパイル",
		"Render every scene of a JSON or YAML story file with its narration and captions, and save the video.": "JSONまたはYAMLのストーリーファイルの各シーンをナレーションと字幕付きでレンダリングし、動画を保存します。",

		// Serve command
		"Run the compile job HTTP API": "コンパイルジョブのHTTP APIを起動",
		"Accept stories over HTTP, compile them in the background and serve the results.": "HTTPでストーリーを受け付け、バックグラウンドでコンパイルし、結果を提供します。",

		// Probe and formats commands
		"Show the container structure of a media file":     "メディアファイルのコンテナ構造を表示",
		"List the output formats this machine can produce": "このマシンで出力可能な形式を一覧表示",

		// Version command
		"Show version information": "バージョン情報を表示",
		"storyreel version %s":     "storyreel バージョン %s",

		// Output flags
		"YAML configuration file":                                  "YAML設定ファイル",
		"Output file path (default: derived from the story title)": "出力ファイルパス（デフォルト: ストーリーのタイトルから生成）",
		"Output execution summary to file (Markdown format)":       "実行サマリーをファイルに出力（Markdown形式）",

		// Video flags
		"Output video width (default: 1280)":                                   "出力動画の幅（デフォルト: 1280）",
		"Output video height (default: 720)":                                   "出力動画の高さ（デフォルト: 720）",
		"Frames per second (default: 30)":                                      "フレームレート（デフォルト: 30）",
		"Output format preference (webm, mp4, avi); repeatable":                "出力形式の優先順位（webm, mp4, avi）。複数指定可",
		"Quality preset (low, medium, high)":                                   "品質プリセット（low, medium, high）",
		"Video CRF value (lower is better, overrides quality preset)":          "動画のCRF値（低いほど高品質、品質プリセットを上書き）",
		"WebM video bitrate in kbps (overrides quality preset)":                "WebM動画のビットレート（kbps、品質プリセットを上書き）",
		"AVI Motion JPEG quality (1-100, overrides quality preset)":            "AVIのMotion JPEG品質（1-100、品質プリセットを上書き）",
		"Path to ffmpeg executable (falls back to FFMPEG_PATH env, then PATH)": "ffmpeg実行ファイルのパス（未指定時はFFMPEG_PATH環境変数、次にPATH）",
		"Pace rendering to wall-clock time":                                    "レンダリングを実時間に合わせる",

		// Narration flags
		"Narration sample rate in Hz (default: 24000)":               "ナレーションのサンプルレート（Hz、デフォルト: 24000）",
		"Narration channel count (default: 1)":                       "ナレーションのチャンネル数（デフォルト: 1）",
		"Length of scenes without narration in seconds (default: 5)": "ナレーションのないシーンの長さ（秒、デフォルト: 5）",

		// Style flags
		"Background color (hex, e.g., #000000)":                "背景色（16進数、例: #000000）",
		"Caption text color (hex, e.g., #ffffff)":              "字幕の文字色（16進数、例: #ffffff）",
		"Caption band color (hex with alpha, e.g., #000000a6)": "字幕帯の色（アルファ付き16進数、例: #000000a6）",
		"Caption font size in pixels (default: 32)":            "字幕のフォントサイズ（ピクセル、デフォルト: 32）",
		"TrueType font file for captions":                      "字幕用のTrueTypeフォントファイル",
		"Final image zoom factor (default: 1.1)":               "画像の最終ズーム倍率（デフォルト: 1.1）",

		// Visual flags
		"Timeout for loading one scene visual (default: 15s)": "1シーンのビジュアル読み込みのタイムアウト（デフォルト: 15s）",

		// Server flags
		"Listen address (default: :8080)":       "待ち受けアドレス（デフォルト: :8080）",
		"Allowed CORS origin; repeatable":       "許可するCORSオリジン。複数指定可",
		"Maximum concurrently running compiles": "同時に実行するコンパイルの最大数",

		// Debug flags
		"Enable debug output":        "デバッグ出力を有効化",
		"Directory for debug output": "デバッグ出力のディレクトリ",

		// Logging flags
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Suppress all log output":              "全てのログ出力を抑制",

		// Runtime messages
		"Compiling %s (%d scenes)...":                        "%s をコンパイル中 (%d シーン)...",
		"Output saved to %s":                                 "出力を %s に保存しました",
		"Output extension does not match recorded format %s": "出力ファイルの拡張子が記録形式 %s と一致しません",
		"Serving compile API on %s":                          "%s でコンパイルAPIを提供中",
		"Interrupted, shutting down...":                      "中断されました。シャットダウン中...",
		"Summary saved to %s":                                "サマリーを %s に保存しました",
		"Failed to write summary: %s":                        "サマリーの書き込みに失敗しました: %s",
		"ffmpeg: %s":                                         "ffmpeg: %s",
		"ffmpeg: not found (only avi is available)":          "ffmpeg: 見つかりません（aviのみ利用可能）",

		// Probe output
		"Format: %s":                              "形式: %s",
		"Size: %d bytes":                          "サイズ: %d バイト",
		"Fragments: %d":                           "フラグメント数: %d",
		"Frames: %d":                              "フレーム数: %d",
		"Track %s: %s, %d samples (timescale %d)": "トラック %s: %s、%d サンプル (タイムスケール %d)",

		// Error messages
		"Story file argument is required": "ストーリーファイル引数が必要です",
		"Media file argument is required": "メディアファイル引数が必要です",
		"Unknown quality preset %s":       "不明な品質プリセット %s",
		"No known output format in %s":    "%s に既知の出力形式がありません",

		// Summary content
		"Compile Summary":   "コンパイルサマリー",
		"Generated":         "生成日時",
		"Story":             "ストーリー",
		"Settings":          "設定",
		"Item":              "項目",
		"Value":             "値",
		"Title":             "タイトル",
		"Scenes":            "シーン",
		"Rendered Scenes":   "レンダリングされたシーン",
		"File":              "ファイル",
		"Format":            "形式",
		"MIME Type":         "MIMEタイプ",
		"Frames":            "フレーム数",
		"Duration":          "再生時間",
		"File Size":         "ファイルサイズ",
		"Track":             "トラック",
		"samples":           "サンプル",
		"Video":             "映像",
		"Audio":             "音声",
		"Quality":           "品質",
		"Video Size":        "動画サイズ",
		"Frame Rate":        "フレームレート",
		"Bitrate":           "ビットレート",
		"Format Preference": "形式の優先順位",
		"Visual":            "ビジュアル",
		"Start":             "開始",
		"Notes":             "備考",
		"Yes":               "あり",
		"Silent":            "無音",
		"Skipped":           "スキップ",
	})
}
