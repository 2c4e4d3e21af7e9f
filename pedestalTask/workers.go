package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	dqm "github.com/next-exp/ecal_dqm/pkg"
)

type WorkerData struct {
	Data   []byte
	Header dqm.EventHeaderStruct
}

func worker(id int, jobs <-chan WorkerData, results chan<- dqm.EventType, wg *sync.WaitGroup) {
	defer wg.Done()
	for job := range jobs {
		if VerbosityLevel > 2 {
			message := fmt.Sprintf("Worker %d processing event %d", id, dqm.EventIdGetNbInRun(job.Header.EventId))
			logger.Info(message, "worker")
		}
		results <- decodeEvent(job.Data, job.Header)
	}
}

func decodeEvent(eventData []byte, header dqm.EventHeaderStruct) (event dqm.EventType) {
	defer func() {
		if r := recover(); r != nil {
			eventID := dqm.EventIdGetNbInRun(header.EventId)
			errMessage := fmt.Errorf("decoder recovered from panic on event %d: %v", eventID, r)
			logger.Error(errMessage.Error())
			event = dqm.EventType{EventID: eventID, Error: true}
		}
	}()

	event, err := dqm.DecodeEvent(eventData, header)
	if err != nil {
		message := fmt.Errorf("error decoding event: %w", err)
		logger.Error(message.Error())
		event.Error = true
	}
	return event
}

// sendEventsToWorkers stops reading once ctx is cancelled. Closing jobs
// lets the workers finish the events already queued.
func sendEventsToWorkers(ctx context.Context, fileReader *FileReader, jobs chan<- WorkerData) {
	defer close(jobs)
	for {
		if ctx.Err() != nil {
			if VerbosityLevel > 0 {
				logger.Info("Reading interrupted", "fileReader")
			}
			return
		}
		header, eventData, err := fileReader.getNextEvent()
		if err != nil {
			if err != io.EOF {
				message := fmt.Errorf("error reading event: %w", err)
				logger.Error(message.Error())
			}
			return
		}
		select {
		case jobs <- WorkerData{Data: eventData, Header: header}:
		case <-ctx.Done():
			return
		}
	}
}

// decodeFile decodes the events of r on numWorkers goroutines. The returned
// channel is closed once every event read before ctx was cancelled has been
// decoded, so the caller must drain it.
func decodeFile(ctx context.Context, r io.Reader, numWorkers int) <-chan dqm.EventType {
	if numWorkers < 1 {
		numWorkers = 1
	}
	jobs := make(chan WorkerData, 100)
	results := make(chan dqm.EventType, 100)

	var wg sync.WaitGroup
	for w := 1; w <= numWorkers; w++ {
		wg.Add(1)
		go worker(w, jobs, results, &wg)
	}
	go sendEventsToWorkers(ctx, NewFileReader(r), jobs)
	go func() {
		wg.Wait()
		close(results)
	}()
	return results
}
