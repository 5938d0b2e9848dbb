// Package shell is an interactive front end for playing games, either on a
// local engine or on a relay over NATS.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/domino14/xwordplay/game"
	"github.com/domino14/xwordplay/move"
	"github.com/domino14/xwordplay/relay"
)

var (
	errNoData     = errors.New("no data in this line")
	errNoGame     = errors.New("no current game; use new or join first")
	errNoExporter = errors.New("dump needs a local engine")
	errNoWatcher  = errors.New("watch needs a relay; start the shell with --remote")
)

// Exporter gives access to full game records. Only the local engine is one.
type Exporter interface {
	Export(ctx context.Context, codeOrID string) (*game.Record, error)
}

// WatchFunc delivers every view published for a player until ctx is done.
type WatchFunc func(ctx context.Context, code, player string, fn func(game.PlayerView)) error

type Response struct {
	message string
}

func Msg(message string) *Response {
	return &Response{message: message}
}

type ShellController struct {
	l   *readline.Instance
	out io.Writer
	ctx context.Context
	svc relay.Service

	watch       WatchFunc
	watchCancel context.CancelFunc

	// The game and seat that commands act on.
	sync.Mutex
	code   string
	player string
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func writeln(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// NewShellController makes a shell over svc. watch may be nil when there is
// no relay to watch.
func NewShellController(ctx context.Context, svc relay.Service, watch WatchFunc) *ShellController {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mxword>\033[0m ",
		HistoryFile:     "/tmp/xword-readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})

	if err != nil {
		panic(err)
	}
	return &ShellController{l: l, out: l.Stderr(), ctx: ctx, svc: svc, watch: watch}
}

func (sc *ShellController) showMessage(msg string) {
	writeln(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func (sc *ShellController) seat() (string, string, error) {
	sc.Lock()
	defer sc.Unlock()
	if sc.code == "" {
		return "", "", errNoGame
	}
	return sc.code, sc.player, nil
}

func (sc *ShellController) sit(code, player string) {
	sc.Lock()
	defer sc.Unlock()
	sc.code, sc.player = code, player
}

func (sc *ShellController) view(code, player string) (string, error) {
	v, err := sc.svc.GetStateFor(sc.ctx, code, player)
	if err != nil {
		return "", err
	}
	return v.ToDisplayText(), nil
}

func (sc *ShellController) newGame(args []string) (*Response, error) {
	if len(args) != 1 {
		return nil, errors.New("new <name>")
	}
	_, code, err := sc.svc.CreateGame(sc.ctx, args[0])
	if err != nil {
		return nil, err
	}
	sc.sit(code, args[0])
	return Msg(fmt.Sprintf("Created game %s. Share the code with your opponent.", code)), nil
}

func (sc *ShellController) join(args []string) (*Response, error) {
	if len(args) != 2 {
		return nil, errors.New("join <code> <name>")
	}
	code := strings.ToUpper(args[0])
	slot, err := sc.svc.JoinGame(sc.ctx, code, args[1])
	if err != nil {
		return nil, err
	}
	sc.sit(code, args[1])
	text, err := sc.view(code, args[1])
	if err != nil {
		return nil, err
	}
	return Msg(fmt.Sprintf("Joined game %s as player %d.\n%s", code, slot, text)), nil
}

func (sc *ShellController) as(args []string) (*Response, error) {
	if len(args) != 1 {
		return nil, errors.New("as <name>")
	}
	code, _, err := sc.seat()
	if err != nil {
		return nil, err
	}
	v, err := sc.svc.GetStateFor(sc.ctx, code, args[0])
	if err != nil {
		return nil, err
	}
	if v.MyPlayerNum == 0 {
		return nil, game.ErrNotAParticipant
	}
	sc.sit(code, args[0])
	return Msg(v.ToDisplayText()), nil
}

func (sc *ShellController) play(args []string) (*Response, error) {
	if len(args) != 2 {
		return nil, errors.New("play <coords> <word>")
	}
	code, player, err := sc.seat()
	if err != nil {
		return nil, err
	}
	p, err := move.ParsePlay(args[0], args[1])
	if err != nil {
		return nil, err
	}
	res, err := sc.svc.SubmitMove(sc.ctx, code, player, p)
	if err != nil {
		return nil, err
	}
	text, err := sc.view(code, player)
	if err != nil {
		return nil, err
	}
	summary := fmt.Sprintf("%s for %d: %s", p, res.Score, res.WordsText)
	if res.Bingo {
		summary += " (bingo!)"
	}
	return Msg(summary + "\n" + text), nil
}

func (sc *ShellController) pass() (*Response, error) {
	code, player, err := sc.seat()
	if err != nil {
		return nil, err
	}
	if _, err := sc.svc.PassTurn(sc.ctx, code, player); err != nil {
		return nil, err
	}
	text, err := sc.view(code, player)
	if err != nil {
		return nil, err
	}
	return Msg(text), nil
}

func (sc *ShellController) show() (*Response, error) {
	code, player, err := sc.seat()
	if err != nil {
		return nil, err
	}
	text, err := sc.view(code, player)
	if err != nil {
		return nil, err
	}
	return Msg(text), nil
}

func (sc *ShellController) dump(args []string) (*Response, error) {
	exp, ok := sc.svc.(Exporter)
	if !ok {
		return nil, errNoExporter
	}
	var key string
	if len(args) > 0 {
		key = args[0]
	} else {
		code, _, err := sc.seat()
		if err != nil {
			return nil, err
		}
		key = code
	}
	rec, err := exp.Export(sc.ctx, key)
	if err != nil {
		return nil, err
	}
	bts, err := yaml.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return Msg(string(bts)), nil
}

func (sc *ShellController) startWatch() (*Response, error) {
	if sc.watch == nil {
		return nil, errNoWatcher
	}
	code, player, err := sc.seat()
	if err != nil {
		return nil, err
	}
	if sc.watchCancel != nil {
		sc.watchCancel()
	}
	ctx, cancel := context.WithCancel(sc.ctx)
	sc.watchCancel = cancel
	go func() {
		err := sc.watch(ctx, code, player, func(v game.PlayerView) {
			sc.showMessage(v.ToDisplayText())
		})
		if err != nil {
			log.Err(err).Str("game", code).Msg("watch-failed")
		}
	}()
	return Msg(fmt.Sprintf("Watching game %s as %s.", code, player)), nil
}

func (sc *ShellController) help(args []string) (*Response, error) {
	var sb strings.Builder
	if len(args) == 0 {
		usage(&sb)
	} else {
		usageTopic(&sb, args[0])
	}
	return Msg(strings.TrimRight(sb.String(), "\n")), nil
}

func (sc *ShellController) handle(line string) (*Response, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	args := fields[1:]
	switch cmd {
	case "new", "n":
		return sc.newGame(args)
	case "join", "j":
		return sc.join(args)
	case "as":
		return sc.as(args)
	case "play", "pl", "p":
		return sc.play(args)
	case "pass", "pa":
		return sc.pass()
	case "show", "s", "b":
		return sc.show()
	case "dump":
		return sc.dump(args)
	case "watch", "w":
		return sc.startWatch()
	case "help", "h":
		return sc.help(args)
	default:
		msg := fmt.Sprintf("command %v not found", strconv.Quote(cmd))
		log.Info().Msg(msg)
		return nil, errors.New(msg)
	}
}

// Execute runs a single command line and shows its result.
func (sc *ShellController) Execute(line string) {
	resp, err := sc.handle(line)
	if err != nil {
		sc.showError(err)
	} else if resp != nil {
		sc.showMessage(resp.message)
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {

	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" {
			sig <- syscall.SIGINT
			break
		}
		sc.Execute(line)
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Cleanup stops any watch in progress.
func (sc *ShellController) Cleanup() {
	if sc.watchCancel != nil {
		sc.watchCancel()
	}
}
