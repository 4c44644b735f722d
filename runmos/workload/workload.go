// Copyright 2024 The Minos Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package workload drives demo workloads against a kernel instance. Each
// workload creates its own kernel and process, spawns worker tasks and
// exercises the synchronization syscalls the way a real guest would.
package workload

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"golang.org/x/sync/errgroup"

	"minos.dev/minos/pkg/abi/minos"
	"minos.dev/minos/pkg/errors/kernelerr"
	"minos.dev/minos/pkg/kernel"
	"minos.dev/minos/pkg/log"
	"minos.dev/minos/runmos/config"
)

// Philosophers runs the dining philosophers workload: conf.Threads
// philosophers contend for conf.Threads forks, each implemented as a
// blocking mutex. Every philosopher grabs its left fork then its right
// fork, so with detection disabled the workload can wedge. With detection
// enabled a philosopher whose second grab would close a cycle gets the
// deadlock error, puts the first fork back, backs off and retries.
func Philosophers(ctx context.Context, conf *config.Config) error {
	k := kernel.New()
	defer k.Shutdown()
	p := k.CreateProcess()

	main := p.NewTask()
	if conf.DeadlockDetect {
		if err := main.SetDeadlockDetect(minos.DeadlockDetectEnable); err != nil {
			return fmt.Errorf("enabling deadlock detection: %w", err)
		}
	}

	forks := make([]kernel.MutexID, conf.Threads)
	for i := range forks {
		forks[i] = main.MutexCreate(true)
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < conf.Threads; i++ {
		t := p.NewTask()
		left := forks[i]
		right := forks[(i+1)%conf.Threads]
		seat := i
		g.Go(func() error {
			for r := 0; r < conf.Rounds; r++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := pickUpForks(ctx, t, left, right); err != nil {
					return fmt.Errorf("philosopher %d: %w", seat, err)
				}
				t.Sleep(1) // Eat.
				if err := t.MutexUnlock(right); err != nil {
					return fmt.Errorf("philosopher %d: %w", seat, err)
				}
				if err := t.MutexUnlock(left); err != nil {
					return fmt.Errorf("philosopher %d: %w", seat, err)
				}
				t.Sleep(1) // Think.
			}
			log.Debugf("philosopher %d finished %d rounds", seat, conf.Rounds)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, f := range forks {
		if err := main.MutexDestroy(f); err != nil {
			return fmt.Errorf("destroying fork %d: %w", f, err)
		}
	}
	return nil
}

// pickUpForks acquires both forks. When the detector rejects an
// acquisition the held fork is released and the whole pair is retried
// after a short backoff.
func pickUpForks(ctx context.Context, t *kernel.Task, left, right kernel.MutexID) error {
	op := func() error {
		if err := t.MutexLock(left); err != nil {
			if err == kernelerr.EDEADLK {
				return err
			}
			return backoff.Permanent(err)
		}
		err := t.MutexLock(right)
		if err == nil {
			return nil
		}
		t.MutexUnlock(left)
		if err == kernelerr.EDEADLK {
			return err
		}
		return backoff.Permanent(err)
	}
	return backoff.Retry(op, backoff.WithContext(backoff.NewConstantBackOff(time.Millisecond), ctx))
}

// poolSize is the number of units in the Pool workload's semaphore.
const poolSize = 3

// Pool runs a resource pool workload: conf.Threads workers make
// conf.Rounds passes each over a pool of poolSize units counted by a
// semaphore. A worker takes a unit, holds it briefly and puts it back; a
// mutex guards the shared counters and the main task waits on a condvar
// until every pass has completed.
func Pool(ctx context.Context, conf *config.Config) error {
	k := kernel.New()
	defer k.Shutdown()
	p := k.CreateProcess()

	main := p.NewTask()
	if conf.DeadlockDetect {
		if err := main.SetDeadlockDetect(minos.DeadlockDetectEnable); err != nil {
			return fmt.Errorf("enabling deadlock detection: %w", err)
		}
	}

	pool := main.SemCreate(poolSize)
	mu := main.MutexCreate(true)
	drained := main.CondvarCreate()

	total := conf.Threads * conf.Rounds
	active := 0
	peak := 0
	done := 0

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < conf.Threads; i++ {
		worker := p.NewTask()
		seq := i
		g.Go(func() error {
			for r := 0; r < conf.Rounds; r++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := worker.SemDown(pool); err != nil {
					return fmt.Errorf("worker %d: %w", seq, err)
				}
				if err := worker.MutexLock(mu); err != nil {
					return fmt.Errorf("worker %d: %w", seq, err)
				}
				active++
				if active > peak {
					peak = active
				}
				worker.MutexUnlock(mu)

				worker.Sleep(1) // Use the unit.

				if err := worker.MutexLock(mu); err != nil {
					return fmt.Errorf("worker %d: %w", seq, err)
				}
				active--
				done++
				worker.MutexUnlock(mu)
				worker.CondvarSignal(drained)
				if err := worker.SemUp(pool); err != nil {
					return fmt.Errorf("worker %d: %w", seq, err)
				}
			}
			return nil
		})
	}

	// Wait until the last pass has completed.
	if err := main.MutexLock(mu); err != nil {
		return err
	}
	for done < total {
		if err := main.CondvarWait(drained, mu); err != nil {
			main.MutexUnlock(mu)
			return err
		}
	}
	main.MutexUnlock(mu)

	if err := g.Wait(); err != nil {
		return err
	}
	if peak > poolSize {
		return fmt.Errorf("pool overcommitted: %d units in use, capacity %d", peak, poolSize)
	}
	log.Infof("pool workload completed %d passes, peak concurrency %d", total, peak)

	// All units are back in the pool, so teardown must succeed.
	for _, step := range []error{
		main.CondvarDestroy(drained),
		main.MutexDestroy(mu),
		main.SemDestroy(pool),
	} {
		if step != nil {
			return fmt.Errorf("teardown: %w", step)
		}
	}
	return nil
}
