// Command chthon-seed uploads a local file into a running chthon kernel's
// VFS over FTP, grounded on protonuke's ftpClient connect/login/quit
// sequence (src/protonuke/ftp.go) but driving dutchcoders/goftp as a
// one-shot upload tool instead of a randomized load generator: connect,
// log in, Stor the file, quit.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dutchcoders/goftp"

	"github.com/goranb131/chthon/pkg/klog"
)

var (
	f_host  = flag.String("host", "127.0.0.1:2121", "host:port of the chthon FTP bridge")
	f_user  = flag.String("user", "anonymous", "FTP username")
	f_pass  = flag.String("pass", "anonymous", "FTP password")
	f_level = flag.String("level", "info", "log level: debug, info, warn, error, fatal")
)

func usage() {
	fmt.Println("usage: chthon-seed [option]... <local-file> <remote-path>")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	level, err := klog.ParseLevel(*f_level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	klog.AddLogger("stderr", os.Stderr, level, true)

	if flag.NArg() != 2 {
		usage()
		os.Exit(1)
	}
	localPath, remotePath := flag.Arg(0), flag.Arg(1)

	f, err := os.Open(localPath)
	if err != nil {
		klog.Fatal("chthon-seed: %v", err)
	}
	defer f.Close()

	ftp, err := goftp.Connect(*f_host)
	if err != nil {
		klog.Fatal("chthon-seed: connect %s: %v", *f_host, err)
	}
	defer ftpQuit(ftp)

	if err := ftp.Login(*f_user, *f_pass); err != nil {
		klog.Fatal("chthon-seed: login: %v", err)
	}
	klog.Debug("logged in as %s", *f_user)

	if err := ftp.Stor(remotePath, f); err != nil {
		klog.Fatal("chthon-seed: stor %s: %v", remotePath, err)
	}

	klog.Info("seeded %s -> %s:%s", localPath, *f_host, remotePath)
}

func ftpQuit(ftp *goftp.FTP) {
	if err := ftp.Quit(); err != nil {
		klog.Error("chthon-seed: quit: %v", err)
	}
}
