package paxoslog

import (
	"fmt"

	"github.com/dr0pdb/icecanepaxos/pkg/paxos"
	"github.com/dr0pdb/icecanepaxos/pkg/storage"
	log "github.com/sirupsen/logrus"
)

// InstanceLog stores the chosen value of every paxos instance, keyed by instance id.
type InstanceLog struct {
	s   *storage.Storage
	cmp *paxos.Comparator
}

// Put stores the record of the instance, replacing any earlier one.
func (l *InstanceLog) Put(instanceID uint64, r *Record) error {
	log.WithFields(log.Fields{"instanceID": instanceID, "proposalID": r.ProposalID}).Debug("paxoslog::log: Put")
	return l.s.Set(l.cmp.Encode(instanceID), r.toBytes())
}

// Get returns the record of the instance.
// returns NotFoundError if nothing was chosen for the instance yet.
func (l *InstanceLog) Get(instanceID uint64) (*Record, error) {
	b, err := l.s.Get(l.cmp.Encode(instanceID))
	if err != nil {
		return nil, err
	}
	return deserializeRecord(b)
}

// MaxInstanceID returns the largest instance id in the log.
// returns false if the log is empty.
func (l *InstanceLog) MaxInstanceID() (uint64, bool, error) {
	var maxKey []byte
	for itr := l.s.Scan(nil); itr.Valid(); itr.Next() {
		maxKey = itr.Key()
	}

	if maxKey == nil {
		return 0, false, nil
	}

	id, err := l.cmp.Decode(maxKey)
	return id, err == nil, err
}

// MinInstanceID returns the smallest instance id in the log.
// returns false if the log is empty.
func (l *InstanceLog) MinInstanceID() (uint64, bool, error) {
	itr := l.s.Scan(nil)
	if !itr.Valid() {
		return 0, false, nil
	}

	id, err := l.cmp.Decode(itr.Key())
	return id, err == nil, err
}

// Range calls fn for every instance >= from in instance order until fn returns false.
func (l *InstanceLog) Range(from uint64, fn func(instanceID uint64, r *Record) bool) error {
	for itr := l.s.Scan(l.cmp.Encode(from)); itr.Valid(); itr.Next() {
		id, err := l.cmp.Decode(itr.Key())
		if err != nil {
			return err
		}

		r, err := deserializeRecord(itr.Value())
		if err != nil {
			return err
		}

		if !fn(id, r) {
			return nil
		}
	}
	return nil
}

// DeleteBefore removes every instance < instanceID in a single batch.
// returns the number of removed instances.
func (l *InstanceLog) DeleteBefore(instanceID uint64) (int, error) {
	wb := &storage.WriteBatch{}
	limit := l.cmp.Encode(instanceID)

	for itr := l.s.Scan(nil); itr.Valid() && l.cmp.Compare(itr.Key(), limit) < 0; itr.Next() {
		wb.Delete(itr.Key())
	}

	n := int(wb.Count())
	if err := l.s.Write(wb); err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{"before": instanceID, "deleted": n}).Info("paxoslog::log: DeleteBefore; truncated the log")
	return n, nil
}

// NewInstanceLog returns an instance log over an open storage.
// The storage must have been created with a comparator of the same name as cmp.
func NewInstanceLog(s *storage.Storage, cmp *paxos.Comparator) (*InstanceLog, error) {
	if s.Comparator().Name() != cmp.Name() {
		return nil, fmt.Errorf("paxoslog::log: NewInstanceLog; storage uses comparator %q, expected %q", s.Comparator().Name(), cmp.Name())
	}

	return &InstanceLog{
		s:   s,
		cmp: cmp,
	}, nil
}
