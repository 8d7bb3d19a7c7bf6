package term

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hitoshi/inkpost/internal/console/board"
	"github.com/hitoshi/inkpost/internal/console/ui"
)

// BoardShell は公開掲示板の端末フロントエンド。
// コマンド名に一致しない行は現在のニックネームでの投稿として扱う。
type BoardShell struct {
	*Shell
	board *board.Board
	notes *ui.Recorder
	st    Styles

	mu       sync.Mutex
	nickname string
}

// NewBoardShell は掲示板用のシェルを生成する。
// フィードの描画はFeedWriterをboard.ConfigのOnFeedに渡して行う。
func NewBoardShell(out *SyncWriter, b *board.Board, notes *ui.Recorder, logger *slog.Logger) *BoardShell {
	s := &BoardShell{
		Shell: NewShell(out, "> ", logger),
		board: b,
		notes: notes,
		st:    NewStyles(),
	}
	s.after = s.flushNotes
	s.fallback = s.say

	s.Handle(Command{Name: "nick", Usage: "nick <昵称>", Run: s.cmdNick})
	s.Handle(Command{Name: "say", Usage: "say <留言>（或直接输入留言）", Run: s.say})
	s.Handle(Command{Name: "refresh", Usage: "refresh", Run: s.cmdRefresh})
	s.Handle(Command{Name: "notice", Usage: "notice（查看公告）", Run: s.cmdNotice})
	return s
}

// FeedWriter はフィードを端末に描画する関数を返す。
func FeedWriter(out *SyncWriter) func([]board.Line) {
	st := NewStyles()
	return func(lines []board.Line) {
		out.Println(st.Meta.Render("──── 留言板 ────"))
		for _, l := range lines {
			out.Println(RenderFeedLine(st, l))
		}
	}
}

func (s *BoardShell) cmdNick(_ context.Context, args string) error {
	s.mu.Lock()
	s.nickname = args
	s.mu.Unlock()
	s.out.Println(s.st.Meta.Render("昵称: " + args))
	return nil
}

func (s *BoardShell) say(ctx context.Context, text string) error {
	s.mu.Lock()
	nick := s.nickname
	s.mu.Unlock()
	s.board.Send(ctx, nick, text)
	return nil
}

func (s *BoardShell) cmdRefresh(ctx context.Context, _ string) error {
	return s.board.Refresh(ctx)
}

func (s *BoardShell) cmdNotice(ctx context.Context, _ string) error {
	s.out.Println(RenderAnnouncement(s.st, s.board.Announcement(ctx)))
	return nil
}

func (s *BoardShell) flushNotes() {
	for _, n := range s.notes.Drain() {
		s.out.Println(RenderNotification(s.st, n))
	}
}
