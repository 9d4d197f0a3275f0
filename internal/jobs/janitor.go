package jobs

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/recipe/internal/partition"
	"github.com/sirupsen/logrus"
)

const DefaultJanitorSchedule = "@every 10m"

var _ CronJob = (*PartitionJanitor)(nil)

// PartitionJanitor drops partitions that were left empty, typically by a
// delete or move that lost a race with a concurrent insert and skipped its
// own cleanup. The sentinel partition is kept.
//
// A partition is only dropped once two consecutive sweeps found it empty, so
// a partition a writer has just created but not yet filled survives.
type PartitionJanitor struct {
	namer    partition.Namer
	dir      partition.Directory
	schedule string
	// empty partitions seen by the previous sweep
	suspects mapset.Set[string]
}

func NewPartitionJanitor(namer partition.Namer, dir partition.Directory, schedule string) *PartitionJanitor {
	if schedule == "" {
		schedule = DefaultJanitorSchedule
	}

	return &PartitionJanitor{
		namer:    namer,
		dir:      dir,
		schedule: schedule,
		suspects: mapset.NewSet[string](),
	}
}

func (j *PartitionJanitor) Name() string {
	return "partition_janitor"
}

func (j *PartitionJanitor) Schedule() string {
	return j.schedule
}

func (j *PartitionJanitor) Run() {
	dropped, err := j.Sweep(context.Background())
	if err != nil {
		logrus.Errorf("partition janitor: %v", err)
		return
	}
	if dropped.Cardinality() > 0 {
		logrus.Infof("partition janitor dropped %v", dropped.ToSlice())
	}
}

// Sweep drops every non-sentinel partition that is empty now and was empty
// on the previous sweep, and returns their names. Sweeps must not overlap.
func (j *PartitionJanitor) Sweep(ctx context.Context) (mapset.Set[string], error) {
	categories, err := j.dir.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	empty := mapset.NewSet[string]()
	dropped := mapset.NewSet[string]()
	for _, category := range categories.ToSlice() {
		name := j.namer.Name(category)
		if j.namer.IsSentinel(name) {
			continue
		}

		count, err := j.dir.Count(ctx, name)
		if err != nil {
			return dropped, err
		}
		if count > 0 {
			continue
		}
		if !j.suspects.Contains(name) {
			logrus.Debugf("partition %s is empty, dropping it on the next sweep", name)
			empty.Add(name)
			continue
		}

		ok, err := partition.DropIfEmpty(ctx, j.dir, j.namer, name)
		if err != nil {
			return dropped, err
		}
		if ok {
			dropped.Add(name)
		}
	}
	j.suspects = empty

	return dropped, nil
}
