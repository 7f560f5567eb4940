// Package extract turns an in-memory export document into normalized records.
package extract

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/huangsam/healthtab/internal/contract"
	"github.com/huangsam/healthtab/schema"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// Element tags collected from anywhere below the root.
const (
	recordTag  = "Record"
	workoutTag = "Workout"
)

// errMissingType is reported for measurement nodes without a type attribute.
var errMissingType = errors.New("missing type attribute")

// Outcome is the result of normalizing a single node: a value or the reason it was skipped.
type Outcome[T any] struct {
	Value T
	Err   error
}

// OK reports whether the node produced a value.
func (o Outcome[T]) OK() bool { return o.Err == nil }

// LoadDocument reads the whole export file into memory.
func LoadDocument(path string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("failed to read export %s: %w", path, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("export %s has no root element", path)
	}
	return doc, nil
}

// Extract walks the document root and returns every valid measurement and workout.
// Malformed nodes are logged and skipped; they never abort the walk.
func Extract(ctx context.Context, root *etree.Element, log logrus.FieldLogger) (*schema.ExtractOutput, error) {
	out := &schema.ExtractOutput{}
	records, workouts := descendants(root)

	for _, el := range records {
		o := ParseMeasurement(el)
		if !o.OK() {
			log.WithError(o.Err).Warn("Skipping record due to error")
			out.SkippedRecords++
			continue
		}
		out.Records = append(out.Records, o.Value)
	}
	log.WithField("skipped", out.SkippedRecords).Infof("Parsed %d health records", len(out.Records))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, el := range workouts {
		o := ParseWorkout(el)
		if !o.OK() {
			log.WithError(o.Err).Warn("Error parsing workout")
			out.SkippedWorkouts++
			continue
		}
		out.Workouts = append(out.Workouts, o.Value)
	}
	log.WithField("skipped", out.SkippedWorkouts).Infof("Parsed %d workout records", len(out.Workouts))

	return out, nil
}

// descendants collects Record and Workout elements below root in document
// order (depth-first, pre-order), including those nested in other elements.
func descendants(root *etree.Element) (records, workouts []*etree.Element) {
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, child := range el.ChildElements() {
			switch child.Tag {
			case recordTag:
				records = append(records, child)
			case workoutTag:
				workouts = append(workouts, child)
			}
			walk(child)
		}
	}
	walk(root)
	return records, workouts
}

// ParseMeasurement normalizes one Record element.
func ParseMeasurement(el *etree.Element) Outcome[schema.MeasurementRecord] {
	var o Outcome[schema.MeasurementRecord]

	recordType := el.SelectAttrValue("type", "")
	if recordType == "" {
		o.Err = errMissingType
		return o
	}

	start, end, err := parseInterval(el)
	if err != nil {
		o.Err = fmt.Errorf("%s: %w", recordType, err)
		return o
	}

	o.Value = schema.MeasurementRecord{
		Type:       recordType,
		SourceName: el.SelectAttrValue("sourceName", ""),
		Unit:       el.SelectAttrValue("unit", ""),
		Value:      number(el, "value"),
		StartTime:  start,
		EndTime:    end,
	}
	return o
}

// ParseWorkout normalizes one Workout element.
func ParseWorkout(el *etree.Element) Outcome[schema.WorkoutRecord] {
	var o Outcome[schema.WorkoutRecord]

	activity := el.SelectAttrValue("workoutActivityType", "")
	start, end, err := parseInterval(el)
	if err != nil {
		o.Err = fmt.Errorf("%s: %w", activity, err)
		return o
	}

	o.Value = schema.WorkoutRecord{
		ActivityType:      activity,
		Duration:          number(el, "duration"),
		TotalDistance:     number(el, "totalDistance"),
		TotalEnergyBurned: number(el, "totalEnergyBurned"),
		StartTime:         start,
		EndTime:           end,
	}
	return o
}

// parseInterval parses the strict startDate and endDate attributes.
func parseInterval(el *etree.Element) (start, end time.Time, err error) {
	if start, err = contract.ParseTimestamp(el.SelectAttrValue("startDate", "")); err != nil {
		return start, end, fmt.Errorf("startDate: %w", err)
	}
	if end, err = contract.ParseTimestamp(el.SelectAttrValue("endDate", "")); err != nil {
		return start, end, fmt.Errorf("endDate: %w", err)
	}
	return start, end, nil
}

// number coerces a numeric attribute, falling back to 0 when missing or malformed.
func number(el *etree.Element, key string) float64 {
	attr := el.SelectAttr(key)
	if attr == nil {
		return 0
	}
	v, err := cast.ToFloat64E(strings.TrimSpace(attr.Value))
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
