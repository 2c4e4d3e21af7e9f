package dqm

import "encoding/binary"

type EventSizeType uint32

type EventMagicType uint32

const EVENT_MAGIC_NUMBER EventMagicType = 0xDA1E5AFE

type EventHeadSizeType uint32

/* ---------- Unique version identifier ---------- */
const EVENT_MAJOR_VERSION_NUMBER = 3
const EVENT_MINOR_VERSION_NUMBER = 14
const EVENT_CURRENT_VERSION = ((EVENT_MAJOR_VERSION_NUMBER << 16) & 0xffff0000) | (EVENT_MINOR_VERSION_NUMBER & 0x0000ffff)

type EventVersionType uint32

/* ---------- Event type ---------- */
type EventTypeType uint32

const (
	START_OF_RUN EventTypeType = iota + 1
	END_OF_RUN
	START_OF_RUN_FILES
	END_OF_RUN_FILES
	START_OF_BURST
	END_OF_BURST
	PHYSICS_EVENT
	CALIBRATION_EVENT
	EVENT_FORMAT_ERROR
	START_OF_DATA
	END_OF_DATA
	SYSTEM_SOFTWARE_TRIGGER_EVENT
	DETECTOR_SOFTWARE_TRIGGER_EVENT
	SYNC_EVENT
)

type EventRunNbType uint32

/* ---------- The eventId field ---------- */
type EventIdType [2]uint32

/*
---------- Timestamps ----------

	The timestamp is split into seconds and microseconds.
*/
type EventTimestampSecType uint32

/* Microseconds: range [0..999999] */
type EventTimestampUsecType uint32

/* ---------- The event header structure ---------- */
type EventHeaderStruct struct {
	EventSize          EventSizeType
	EventMagic         EventMagicType
	EventHeadSize      EventHeadSizeType
	EventVersion       EventVersionType
	EventType          EventTypeType
	EventRunNb         EventRunNbType
	EventId            EventIdType
	EventTimestampSec  EventTimestampSecType
	EventTimestampUsec EventTimestampUsecType
}

type EquipmentSizeType uint32
type EquipmentTypeType uint32
type EquipmentIdType uint32

const EQUIPMENT_DCC EquipmentTypeType = 1

// One equipment per DCC; EquipmentSize includes this header.
type EquipmentHeaderStruct struct {
	EquipmentSize EquipmentSizeType
	EquipmentType EquipmentTypeType
	EquipmentId   EquipmentIdType
}

type DCCHeaderStruct struct {
	RunType  int16
	NDigis   uint16
	NPnDigis uint16
	Reserved uint16
}

var (
	eventHeaderSize     = binary.Size(EventHeaderStruct{})
	equipmentHeaderSize = binary.Size(EquipmentHeaderStruct{})
	dccHeaderSize       = binary.Size(DCCHeaderStruct{})
	digiSize            = 4 + 2*NSamples
	pnDigiSize          = 4 + 2*NPnSamples
)

func EventIdGetNbInRun(id EventIdType) uint32 {
	return id[0]
}

func (h EventHeaderStruct) Timestamp() uint64 {
	return uint64(h.EventTimestampSec)*1000000 + uint64(h.EventTimestampUsec)
}
