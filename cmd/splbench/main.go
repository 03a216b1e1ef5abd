// Command splbench is a small harness exercising libspl-go's concurrent
// containers and broadcast transport, useful for manual smoke testing
// and rough throughput numbers. It is not a rigorous benchmark suite.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/norensa/libspl-go/container/deque"
	"github.com/norensa/libspl-go/container/hmap"
	"github.com/norensa/libspl-go/internal/xhash"
	"github.com/norensa/libspl-go/net/broadcast"
)

var cli struct {
	Hmap struct {
		Keys    int `help:"Number of distinct keys to insert." default:"80000"`
		Workers int `help:"Concurrent inserting goroutines." default:"8"`
	} `cmd:"" help:"Benchmark the concurrent hash map under contended inserts."`

	Deque struct {
		Producers int `help:"Number of producer goroutines." default:"4"`
		PerWorker int `help:"Enqueues per producer." default:"5000"`
	} `cmd:"" help:"Benchmark the blocking deque under multi-producer/consumer load."`

	Broadcast struct {
		Listen  string        `help:"UDP address to listen on." default:"0.0.0.0:9999"`
		Target  string        `help:"UDP broadcast address to send to." default:"255.255.255.255:9999"`
		Count   int           `help:"Number of messages to send." default:"1000"`
		Size    int           `help:"Message size in bytes." default:"8192"`
		Timeout time.Duration `help:"How long to wait for all messages to arrive." default:"10s"`
	} `cmd:"" help:"Send and receive a burst of broadcast messages, reporting how many arrived."`
}

func main() {
	log, _ := zap.NewDevelopment()
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go waitForShutdown(cancel, log)

	kctx := kong.Parse(&cli,
		kong.Name("splbench"),
		kong.Description("Smoke-test harness for libspl-go's containers and broadcast transport."),
	)

	var err error
	switch kctx.Command() {
	case "hmap":
		err = runHmap(ctx, log)
	case "deque":
		err = runDeque(ctx, log)
	case "broadcast":
		err = runBroadcast(ctx, log)
	default:
		err = fmt.Errorf("unknown command %q", kctx.Command())
	}
	if err != nil {
		log.Fatal("splbench failed", zap.Error(err))
	}
}

func waitForShutdown(cancel context.CancelFunc, log *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutdown signal received")
	cancel()
}

func runHmap(ctx context.Context, log *zap.Logger) error {
	m := hmap.NewConcurrent[int, int](cli.Hmap.Keys, func(k int) uint64 { return xhash.Int64(int64(k)) })
	start := time.Now()

	var wg sync.WaitGroup
	perWorker := cli.Hmap.Keys / cli.Hmap.Workers
	for w := 0; w < cli.Hmap.Workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				k := w*perWorker + i
				m.Put(k, k*2)
			}
		}()
	}
	wg.Wait()

	elapsed := time.Since(start)
	log.Info("hmap benchmark complete",
		zap.Int("size", m.Len()),
		zap.Duration("elapsed", elapsed),
		zap.String("rate", humanize.Comma(int64(float64(m.Len())/elapsed.Seconds()))+"/s"),
	)
	return nil
}

func runDeque(ctx context.Context, log *zap.Logger) error {
	d := deque.New[int]()
	start := time.Now()
	total := cli.Deque.Producers * cli.Deque.PerWorker

	var producers sync.WaitGroup
	for p := 0; p < cli.Deque.Producers; p++ {
		producers.Add(1)
		go func() {
			defer producers.Done()
			for i := 0; i < cli.Deque.PerWorker; i++ {
				d.Enqueue(i)
			}
		}()
	}

	consumed := 0
	var consumedMu sync.Mutex
	var consumers sync.WaitGroup
	for c := 0; c < cli.Deque.Producers; c++ {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			for {
				_, err := d.DequeueTimeout(200 * time.Millisecond)
				if err != nil {
					consumedMu.Lock()
					done := consumed >= total
					consumedMu.Unlock()
					if done {
						return
					}
					continue
				}
				consumedMu.Lock()
				consumed++
				consumedMu.Unlock()
			}
		}()
	}

	producers.Wait()
	consumers.Wait()

	log.Info("deque benchmark complete",
		zap.Int("produced", total),
		zap.Int("consumed", consumed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func runBroadcast(ctx context.Context, log *zap.Logger) error {
	conn, err := broadcast.Listen(cli.Broadcast.Listen)
	if err != nil {
		return err
	}
	defer conn.Close()

	target, err := net.ResolveUDPAddr("udp4", cli.Broadcast.Target)
	if err != nil {
		return err
	}

	sender := broadcast.NewSender(conn, []net.Addr{target}, broadcast.Config{}, log)
	defer sender.Close()
	receiver := broadcast.NewReceiver(conn, broadcast.Config{}, log, nil)
	defer receiver.Close()

	received := 0
	deadline := time.Now().Add(cli.Broadcast.Timeout)

	go func() {
		for i := 0; i < cli.Broadcast.Count; i++ {
			msg := make([]byte, cli.Broadcast.Size)
			if err := sender.Send(msg); err != nil {
				log.Warn("send failed", zap.Error(err))
			}
		}
	}()

	buf := make([]byte, cli.Broadcast.Size)
	for received < cli.Broadcast.Count && time.Now().Before(deadline) {
		recvCtx, cancel := context.WithDeadline(ctx, deadline)
		n, _, err := receiver.Recv(recvCtx, buf, true)
		cancel()
		if err != nil {
			continue
		}
		if n > 0 {
			received++
		}
	}

	log.Info("broadcast benchmark complete",
		zap.Int("sent", cli.Broadcast.Count),
		zap.Int("received", received),
	)
	return nil
}
