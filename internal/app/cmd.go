package app

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandMigrate はデータベースマイグレーションを実行することを示す。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
	// CommandToken は管理者用Bearerトークンを発行して資格情報ファイルに保存することを示す。
	CommandToken Command = "token"
	// CommandConsole は端末の管理コンソールを起動することを示す。
	CommandConsole Command = "console"
	// CommandBoard は端末の公開掲示板を起動することを示す。
	CommandBoard Command = "board"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "serve":
		return CommandServe
	case "migrate":
		return CommandMigrate
	case "healthcheck":
		return CommandHealthcheck
	case "token":
		return CommandToken
	case "console":
		return CommandConsole
	case "board":
		return CommandBoard
	default:
		return CommandServe
	}
}
