// Command chthon boots the kernel: it wires the VFS, process table,
// scheduler, console and trap gateway together, mounts ramfs (and
// optionally an abyssfs disk image), starts the FTP and console-websocket
// servers, then launches a root process and idles until a signal arrives.
// Wiring order and flag layout follow the teacher's cmd/minimega/main.go.
package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/goftp/server"

	"github.com/goranb131/chthon/internal/blockdev"
	"github.com/goranb131/chthon/internal/console"
	"github.com/goranb131/chthon/internal/dispatch"
	"github.com/goranb131/chthon/internal/ftpbridge"
	"github.com/goranb131/chthon/internal/process"
	"github.com/goranb131/chthon/internal/trap"
	"github.com/goranb131/chthon/internal/vfs"
	"github.com/goranb131/chthon/internal/vfs/abyssfs"
	"github.com/goranb131/chthon/internal/vfs/ramfs"
	"github.com/goranb131/chthon/pkg/klog"
)

const banner = `chthon, an AArch64 message-passing microkernel core`

var (
	f_level       = flag.String("level", "info", "log level: debug, info, warn, error, fatal")
	f_disk        = flag.String("disk", "", "path to an abyssfs disk image; mounted at / if given, otherwise ramfs is root")
	f_diskInit    = flag.Uint64("diskinit", 0, "sectors to format a new disk image with, if -disk does not already exist")
	f_consoleAddr = flag.String("console", "127.0.0.1:9001", "address the console websocket listens on")
	f_ftpAddr     = flag.String("ftp", "", "address the FTP bridge listens on (disabled if empty)")
	f_ftpUser     = flag.String("ftpuser", "anonymous", "FTP username")
	f_ftpPass     = flag.String("ftppass", "anonymous", "FTP password")
)

func usage() {
	fmt.Println(banner)
	fmt.Println("usage: chthon [option]...")
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

	klog.Info("chthon booting")

	v, err := bootVFS()
	if err != nil {
		klog.Fatal("vfs: %v", err)
	}

	table := process.NewTable()
	sched := process.NewScheduler(table)
	cons := console.New(os.Stdout)
	d := dispatch.New(v, table, sched, cons)
	gw := trap.NewGateway(d)
	_ = gw // the gateway is driven by a syscall trampoline this module does not host

	if *f_ftpAddr != "" {
		startFTP(v)
	}
	startConsole(cons)

	root := table.Create(0)
	sched.Launch(root, func(p *process.Process) int {
		cons.Puts("chthon: root process running\n")
		return 0
	})

	waitForSignal()
	klog.Info("chthon shutting down")
}

// bootVFS registers ramfs and, if requested, an abyssfs-formatted disk
// image, then mounts whichever one is root: an existing or newly-formatted
// disk image takes priority over ramfs, matching the original's boot
// sequence of mounting the real root filesystem before anything else.
func bootVFS() (*vfs.VFS, error) {
	v := vfs.New()

	rfs := ramfs.New()
	if err := v.RegisterFilesystem(rfs); err != nil {
		return nil, err
	}

	if *f_disk == "" {
		if err := v.Mount("/", "ramfs"); err != nil {
			return nil, err
		}
		klog.Info("mounted ramfs at /")
		return v, nil
	}

	dev, err := openOrFormatDisk(*f_disk, *f_diskInit)
	if err != nil {
		return nil, err
	}

	afs, err := abyssfs.Mount(dev)
	if err != nil {
		return nil, err
	}
	if err := v.MountBackend("/", afs); err != nil {
		return nil, err
	}
	klog.Info("mounted abyssfs at / from %s", *f_disk)

	if err := v.Mount("/tmp", "ramfs"); err != nil {
		return nil, err
	}
	klog.Info("mounted ramfs at /tmp")

	return v, nil
}

func openOrFormatDisk(path string, initSectors uint64) (*blockdev.Device, error) {
	if _, err := os.Stat(path); err == nil {
		return blockdev.Init(path)
	}

	if initSectors == 0 {
		return nil, fmt.Errorf("chthon: %s does not exist and -diskinit was not given", path)
	}

	dev, err := blockdev.Create(path, initSectors)
	if err != nil {
		return nil, err
	}
	if err := abyssfs.Format(dev, initSectors/16); err != nil {
		dev.Close()
		return nil, err
	}
	klog.Info("formatted new abyssfs image at %s (%d sectors)", path, initSectors)
	return blockdev.Init(path)
}

// startConsole serves internal/console.Listener's websocket byte relay in
// the background.
func startConsole(c *console.Console) {
	l := console.NewListener(c)
	mux := http.NewServeMux()
	mux.Handle("/console", l.Handler())

	go func() {
		klog.Info("console listening on ws://%s/console", *f_consoleAddr)
		if err := http.ListenAndServe(*f_consoleAddr, mux); err != nil {
			klog.Error("console server: %v", err)
		}
	}()
}

// ftpAuth checks the single configured FTP credential pair, the same shape
// protonuke's FTPAuth uses.
type ftpAuth struct {
	user, pass string
}

func (a ftpAuth) CheckPasswd(user, pass string) (bool, error) {
	return user == a.user && pass == a.pass, nil
}

// startFTP serves the VFS over FTP via ftpbridge, grounded on protonuke's
// ftpServer.
func startFTP(v *vfs.VFS) {
	perm := server.NewSimplePerm(*f_ftpUser, *f_ftpPass)
	factory := &ftpbridge.Factory{VFS: v, Perm: perm}
	auth := ftpAuth{user: *f_ftpUser, pass: *f_ftpPass}

	host, portStr, err := net.SplitHostPort(*f_ftpAddr)
	if err != nil {
		klog.Error("ftp: bad -ftp address %q: %v", *f_ftpAddr, err)
		return
	}
	var port int
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		klog.Error("ftp: bad -ftp port %q: %v", portStr, err)
		return
	}
	if host == "" {
		host = "127.0.0.1"
	}

	opt := &server.ServerOpts{
		Factory:  factory,
		Auth:     auth,
		Name:     "chthon",
		PublicIp: host,
		Port:     port,
	}
	srv := server.NewServer(opt)

	go func() {
		klog.Info("ftp bridge listening on %s", *f_ftpAddr)
		if err := srv.ListenAndServe(); err != nil {
			klog.Error("ftp server: %v", err)
		}
	}()
}

func waitForSignal() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
