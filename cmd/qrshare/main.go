// Command qrshare is a small operational CLI over the QR Share API client
// runtime: sign in, inspect albums, and upload media with live progress.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"github.com/qrshare/qrshare-go/albums"
	"github.com/qrshare/qrshare-go/auth"
	"github.com/qrshare/qrshare-go/client"
	"github.com/qrshare/qrshare-go/common/config"
	"github.com/qrshare/qrshare-go/common/logger"
	"github.com/qrshare/qrshare-go/credential"
)

func main() {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	store, err := credential.OpenSQLiteStore(config.CredentialDBPath)
	if err != nil {
		logger.Logger.Panic("open credential store", zap.Error(err))
	}
	api := client.New(store, client.WithForcedLogoutHook(func() {
		fmt.Fprintln(os.Stderr, "session expired, please log in again")
	}))

	ctx := context.Background()
	if err := run(ctx, api, os.Args[1], os.Args[2:]); err != nil {
		uiErr := renderError(err)
		fmt.Fprintf(os.Stderr, "%s: %s\n", uiErr.Title, uiErr.Message)
		os.Exit(1)
	}
}

func run(ctx context.Context, api *client.Client, command string, args []string) error {
	switch command {
	case "login":
		return runLogin(ctx, api, args)
	case "whoami":
		return runWhoami(ctx, api)
	case "logout":
		return auth.NewService(api).Logout(ctx)
	case "albums":
		return runAlbums(ctx, api)
	case "upload":
		return runUpload(ctx, api, args)
	default:
		usage()
		return errors.Errorf("unknown command %q", command)
	}
}

func runLogin(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)

	user, err := auth.NewService(api).Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s <%s>\n", user.DisplayName, user.Email)
	return nil
}

func runWhoami(ctx context.Context, api *client.Client) error {
	user, err := auth.NewService(api).Me(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s>\n", user.DisplayName, user.Email)
	return nil
}

func runAlbums(ctx context.Context, api *client.Client) error {
	list, err := albums.NewService(api).List(ctx)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Title", "Visibility", "QR Slug", "Media"})
	for _, album := range list {
		table.Append([]string{
			strconv.Itoa(album.Id),
			album.Title,
			album.Visibility,
			album.QrSlug,
			strconv.Itoa(album.MediaCount),
		})
	}
	table.Render()
	return nil
}

func runUpload(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	albumId := fs.Int("album", 0, "target album id")
	path := fs.String("file", "", "file to upload")
	_ = fs.Parse(args)

	content, err := os.ReadFile(*path)
	if err != nil {
		return err
	}

	upload := albums.NewService(api).UploadMedia(ctx, *albumId, filepath.Base(*path), content)
	for ev := range upload.Events {
		fmt.Printf("\rupload: %3d%% (%d/%d bytes)", ev.Percent, ev.BytesSent, ev.BytesTotal)
	}
	fmt.Println()
	if _, err := upload.Wait(); err != nil {
		return err
	}
	fmt.Println("upload complete")
	return nil
}

// renderError funnels every failure through the shared classifier so the
// CLI shows the same titles the web UI would.
func renderError(err error) client.UiError {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return client.Classify(apiErr, client.Actions{})
	}
	return client.UiError{Title: "error", Message: err.Error(), Display: client.DisplayInline}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: qrshare <command> [flags]

commands:
  login   -email <email> -password <password>
  whoami
  logout
  albums
  upload  -album <id> -file <path>`)
}
