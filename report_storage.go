package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-mrz-validator/models"

	"github.com/redis/go-redis/v9"
)

var ErrReportNotFound = errors.New("report not found")

type InMemoryReportStorage struct {
	ReportMap map[string]models.ValidationResponse
	mutex     sync.Mutex
}

func NewInMemoryReportStorage() *InMemoryReportStorage {
	return &InMemoryReportStorage{
		ReportMap: make(map[string]models.ValidationResponse),
	}
}

type RedisReportStorage struct {
	client    *redis.Client
	namespace string
}

func NewRedisReportStorage(client *redis.Client, namespace string) *RedisReportStorage {
	return &RedisReportStorage{client: client, namespace: namespace}
}

// Should be safe to use in concurrency
type ReportStorage interface {
	// Store the report under the given id, overwriting any existing one.
	StoreReport(reportId string, report models.ValidationResponse) error

	// Retrieve the report for the given id. A missing or expired report
	// is reported as ErrReportNotFound.
	RetrieveReport(reportId string) (models.ValidationResponse, error)

	// Remove the report. The report not being there is also an error.
	RemoveReport(reportId string) error
}

// ------------------------------------------------------------------------------

func createKey(namespace, reportId string) string {
	return fmt.Sprintf("%s:report:%s", namespace, reportId)
}

const Timeout time.Duration = 24 * time.Hour

func (s *RedisReportStorage) StoreReport(reportId string, report models.ValidationResponse) error {
	ctx := context.Background()
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return s.client.Set(ctx, createKey(s.namespace, reportId), payload, Timeout).Err()
}

func (s *RedisReportStorage) RetrieveReport(reportId string) (models.ValidationResponse, error) {
	ctx := context.Background()
	payload, err := s.client.Get(ctx, createKey(s.namespace, reportId)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.ValidationResponse{}, fmt.Errorf("%w: %s", ErrReportNotFound, reportId)
	}
	if err != nil {
		return models.ValidationResponse{}, err
	}

	var report models.ValidationResponse
	if err := json.Unmarshal(payload, &report); err != nil {
		return models.ValidationResponse{}, fmt.Errorf("failed to unmarshal report %s: %w", reportId, err)
	}
	return report, nil
}

func (s *RedisReportStorage) RemoveReport(reportId string) error {
	ctx := context.Background()
	removed, err := s.client.Del(ctx, createKey(s.namespace, reportId)).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return fmt.Errorf("%w: %s", ErrReportNotFound, reportId)
	}
	return nil
}

// ------------------------------------------------------------------------------

func (s *InMemoryReportStorage) StoreReport(reportId string, report models.ValidationResponse) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.ReportMap[reportId] = report
	return nil
}

func (s *InMemoryReportStorage) RetrieveReport(reportId string) (models.ValidationResponse, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if report, ok := s.ReportMap[reportId]; ok {
		return report, nil
	}
	return models.ValidationResponse{}, fmt.Errorf("%w: %s", ErrReportNotFound, reportId)
}

func (s *InMemoryReportStorage) RemoveReport(reportId string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.ReportMap[reportId]; !ok {
		return fmt.Errorf("failed to remove report %s, because it wasn't there: %w", reportId, ErrReportNotFound)
	}
	delete(s.ReportMap, reportId)
	return nil
}
