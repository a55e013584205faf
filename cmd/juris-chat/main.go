package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/andrew/juris-chat/pkg/api"
	"github.com/andrew/juris-chat/pkg/assistant"
	"github.com/andrew/juris-chat/pkg/chat"
	"github.com/andrew/juris-chat/pkg/config"
	"github.com/andrew/juris-chat/pkg/export"
	"github.com/andrew/juris-chat/pkg/models"
	"github.com/andrew/juris-chat/pkg/registry"
	"github.com/andrew/juris-chat/pkg/store"
)

// app bundles the wired components behind every command.
type app struct {
	cfg   *config.Config
	reg   *registry.Registry
	store *store.Store
	svc   *chat.Service
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	assistants := cfg.AssistantList()
	if assistants == nil {
		assistants = registry.Default()
	}
	reg, err := registry.New(assistants)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.StorePath, logger)
	if err != nil {
		return nil, err
	}

	client := assistant.NewOpenAIClient(cfg.APIKey)
	policy := assistant.PollPolicy{Interval: cfg.Poll.Interval, MaxWait: cfg.Poll.MaxWait}
	exporter := export.NewPDFExporter(cfg.ExportDir)
	svc := chat.NewService(reg, st, client, policy, exporter, logger)

	return &app{cfg: cfg, reg: reg, store: st, svc: svc}, nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

func main() {
	root := &cobra.Command{
		Use:           "juris-chat",
		Short:         "Chat client for the preconfigured legal assistants",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(chatCmd(), serveCmd(), exportCmd(), historyCmd(), snapshotsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [assistant]",
		Short: "Start an interactive conversation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-c
				fmt.Println("\nShutting down...")
				cancel()
				os.Exit(0)
			}()

			key := ""
			if len(args) == 1 {
				key = args[0]
			}
			return runChatLoop(ctx, a, key)
		},
	}
}

func runChatLoop(ctx context.Context, a *app, key string) error {
	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	selected, ok := a.reg.Resolve(key)
	if !ok {
		var err error
		selected, err = pickAssistant(a.reg, scanner, boldCyan)
		if err != nil {
			return err
		}
	}

	fmt.Println(boldGreen("Assistente Jurídico Interno"))
	fmt.Printf("Assistente: %s (%s)\n", boldCyan(selected.Name), selected.Description)
	fmt.Println("Digite sua mensagem e pressione Enter.")
	fmt.Println(gray("Comandos: /começar /exportar /copiar /compartilhar /salvar /limpar, 'exit' para sair."))
	fmt.Println(gray("Uma mensagem contendo DOCUMENTO gera o PDF da conversa."))
	fmt.Println()

	printThread := func() {
		thread, err := a.svc.History(selected.ID)
		if err != nil {
			return
		}
		for _, m := range thread.Messages {
			printMessage(m, boldGreen, boldCyan, gray)
		}
	}
	printThread()

	for {
		fmt.Print(boldGreen("Você: "))
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") {
			break
		}

		if handled, err := runLocalCommand(ctx, a, selected, input); handled {
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			continue
		}

		// Input stays blocked here until the run terminates; only one run
		// per conversation is ever in flight.
		res, err := a.svc.Send(ctx, selected.ID, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if res.Exported {
			fmt.Println(gray("Documento PDF exportado: " + res.ExportPath))
			continue
		}
		fmt.Printf("%s %s\n\n", boldCyan("Assistente:"), res.Reply.Content)
	}
	return nil
}

// runLocalCommand handles the slash commands of the action toolbar.
// Returns handled=false for plain chat input.
func runLocalCommand(ctx context.Context, a *app, selected models.Assistant, input string) (bool, error) {
	switch strings.ToLower(input) {
	case "/começar", "/comecar":
		res, err := a.svc.Start(ctx, selected.ID)
		if err == nil {
			fmt.Printf("%s %s\n\n", color.New(color.FgCyan, color.Bold).Sprint("Assistente:"), res.Reply.Content)
		}
		return true, err
	case "/exportar":
		path, err := a.svc.ExportPDF(selected.ID)
		if err == nil {
			fmt.Println("Documento PDF exportado:", path)
		}
		return true, err
	case "/copiar":
		err := a.svc.ExportClipboard(selected.ID)
		if err == nil {
			fmt.Println("Conversa copiada para a área de transferência.")
		}
		return true, err
	case "/compartilhar":
		err := a.svc.ExportShare(selected.ID)
		if err != nil {
			// Share failure is a notice, not a crash.
			fmt.Println("Não foi possível compartilhar:", err)
			return true, nil
		}
		fmt.Println("Conversa enviada para o aplicativo padrão.")
		return true, nil
	case "/salvar":
		snap, err := a.svc.SaveSnapshot(selected.ID, "")
		if err == nil {
			fmt.Println("Conversa salva:", snap.Title)
		}
		return true, err
	case "/limpar":
		err := a.svc.Clear(selected.ID)
		if err == nil {
			fmt.Println("Histórico limpo.")
		}
		return true, err
	}
	return false, nil
}

func pickAssistant(reg *registry.Registry, scanner *bufio.Scanner, highlight func(...interface{}) string) (models.Assistant, error) {
	list := reg.List()
	fmt.Println("Selecione o assistente:")
	for i, a := range list {
		fmt.Printf("  %2d. %s - %s\n", i+1, highlight(a.Name), a.Description)
	}
	fmt.Print("> ")
	if !scanner.Scan() {
		return models.Assistant{}, fmt.Errorf("no assistant selected")
	}
	choice := strings.TrimSpace(scanner.Text())
	for i, a := range list {
		if choice == fmt.Sprintf("%d", i+1) || strings.EqualFold(choice, a.Name) {
			return a, nil
		}
	}
	return models.Assistant{}, fmt.Errorf("unknown assistant %q", choice)
}

func printMessage(m models.Message, user, assistantC, gray func(...interface{}) string) {
	label := user("Você:")
	if m.Role == models.RoleAssistant {
		label = assistantC("Assistente:")
	}
	fmt.Printf("%s %s\n%s\n\n", gray(m.Timestamp.Format("02/01/2006 15:04")), label, m.Content)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			logger := slog.Default()
			logger.Info("starting HTTP API", "addr", a.cfg.Listen)
			return api.NewServer(a.svc, a.reg, logger).Run(a.cfg.Listen)
		},
	}
}

func exportCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "export <assistant>",
		Short: "Export a stored conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			sel, ok := a.reg.Resolve(args[0])
			if !ok {
				return fmt.Errorf("unknown assistant %q", args[0])
			}
			switch mode {
			case "pdf":
				path, err := a.svc.ExportPDF(sel.ID)
				if err != nil {
					return err
				}
				fmt.Println(path)
				return nil
			case "clipboard":
				return a.svc.ExportClipboard(sel.ID)
			case "share":
				return a.svc.ExportShare(sel.ID)
			}
			return fmt.Errorf("unknown export mode %q", mode)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "pdf", "Export mode: pdf, clipboard or share")
	return cmd
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <assistant>",
		Short: "Print a stored conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			sel, ok := a.reg.Resolve(args[0])
			if !ok {
				return fmt.Errorf("unknown assistant %q", args[0])
			}
			thread, err := a.svc.History(sel.ID)
			if err != nil {
				return err
			}
			fmt.Print(export.Flatten(thread.Messages))
			return nil
		},
	}
}

func snapshotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots",
		Short: "List saved conversation snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			snaps, err := a.svc.Snapshots()
			if err != nil {
				return err
			}
			for _, s := range snaps {
				fmt.Printf("%s  %s (%d mensagens, %s)\n",
					s.ID, s.Title, len(s.Messages), s.SavedAt.Format("02/01/2006 15:04"))
			}
			return nil
		},
	}
}
