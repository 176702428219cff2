package batch

import (
	"context"
	"sync"
)

type fileJob struct {
	index int
	path  string
}

// processFilesParallel renders the files with a pool of workers and returns
// the items in input order. Without continueOnError the first failure
// cancels the remaining jobs; unprocessed files keep a nil item.
func processFilesParallel(ctx context.Context, r Renderer, files []string, outputDir string,
	workers int, continueOnError bool, progress ProgressCallback,
) []*Item {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if workers <= 0 {
		workers = 1
	}
	if progress != nil {
		progress.OnStart(len(files))
		defer progress.OnComplete()
	}

	jobs := make(chan fileJob)
	results := make(chan *indexedItem, len(files))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					continue
				}
				item := processSingleFile(ctx, r, job.path, outputDir)
				if !item.OK() && !continueOnError {
					cancel()
				}
				results <- &indexedItem{index: job.index, item: item}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, path := range files {
			select {
			case jobs <- fileJob{index: i, path: path}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	items := make([]*Item, len(files))
	done := 0
	for res := range results {
		items[res.index] = res.item
		done++
		if progress != nil {
			progress.OnProgress(done, len(files))
		}
	}
	return items
}

type indexedItem struct {
	index int
	item  *Item
}
