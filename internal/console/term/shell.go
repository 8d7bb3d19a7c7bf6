package term

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// ErrQuit はシェルの終了を要求するためにコマンドが返すエラー。
var ErrQuit = errors.New("quit")

// Command はシェルの1コマンド。argsはコマンド名の後ろの残り全体（前後の空白は除去済み）。
type Command struct {
	Name  string
	Usage string
	Run   func(ctx context.Context, args string) error
}

// Shell は1行1コマンドの対話シェル。
type Shell struct {
	out      *SyncWriter
	prompt   string
	commands map[string]Command
	// fallback はコマンド名に一致しない行を処理する。nilの場合は不明なコマンドとして扱う。
	fallback func(ctx context.Context, line string) error
	// after は各コマンドの実行後に呼ばれる。通知の表示などに使う。
	after  func()
	logger *slog.Logger
}

// NewShell は新しいShellを生成する。
func NewShell(out *SyncWriter, prompt string, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Shell{
		out:      out,
		prompt:   prompt,
		commands: make(map[string]Command),
		logger:   logger,
	}
	s.Handle(Command{Name: "help", Usage: "help", Run: func(context.Context, string) error {
		s.printHelp()
		return nil
	}})
	s.Handle(Command{Name: "quit", Usage: "quit", Run: func(context.Context, string) error { return ErrQuit }})
	return s
}

// Handle はコマンドを登録する。
func (s *Shell) Handle(cmd Command) {
	s.commands[cmd.Name] = cmd
}

// Run は入力が終わるか、quitが実行されるか、ctxがキャンセルされるまでコマンドを処理する。
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	s.out.Printf("%s", s.prompt)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if err := s.Exec(ctx, line); errors.Is(err, ErrQuit) {
				return nil
			}
			s.out.Printf("%s", s.prompt)
		}
	}
}

// Exec は1行を解釈して実行する。空行は無視する。
func (s *Shell) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	name, args, _ := strings.Cut(line, " ")
	args = strings.TrimSpace(args)

	var err error
	if cmd, ok := s.commands[name]; ok {
		err = cmd.Run(ctx, args)
	} else if s.fallback != nil {
		err = s.fallback(ctx, line)
	} else {
		s.out.Println("未知命令: " + name + "（输入 help 查看帮助）")
	}

	if err != nil && !errors.Is(err, ErrQuit) {
		s.logger.Debug("コマンドの実行に失敗", slog.String("command", name), slog.String("error", err.Error()))
	}
	if s.after != nil {
		s.after()
	}
	return err
}

func (s *Shell) printHelp() {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.out.Println("  " + s.commands[name].Usage)
	}
}

// SyncWriter は複数のgoroutineから安全に書き込めるWriter。
// ポーリングによるフィード描画とシェル出力が同じ端末に書き込むために使う。
type SyncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewSyncWriter はwをラップしたSyncWriterを返す。
func NewSyncWriter(w io.Writer) *SyncWriter {
	return &SyncWriter{w: w}
}

// Write はio.Writerを実装する。
func (w *SyncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}

// Println は1行を書き込む。
func (w *SyncWriter) Println(s string) {
	fmt.Fprintln(w, s)
}

// Printf は書式付きで書き込む。
func (w *SyncWriter) Printf(format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
