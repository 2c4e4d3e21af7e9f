package dqm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

func ValidEvent(header EventHeaderStruct) bool {
	return header.EventType == PHYSICS_EVENT || header.EventType == CALIBRATION_EVENT
}

func ReadEventFromFile(file io.Reader) (EventHeaderStruct, []byte, error) {
	var header EventHeaderStruct
	headerBinary := make([]byte, eventHeaderSize)
	if _, err := io.ReadFull(file, headerBinary); err != nil {
		if err == io.ErrUnexpectedEOF {
			return header, nil, &ErrShortEvent{Block: "event header", Needed: eventHeaderSize}
		}
		return header, nil, err
	}

	headerReader := bytes.NewReader(headerBinary)
	binary.Read(headerReader, binary.LittleEndian, &header)
	if header.EventMagic != EVENT_MAGIC_NUMBER {
		return header, nil, &ErrBadMagic{Magic: uint32(header.EventMagic)}
	}
	if int(header.EventSize) < eventHeaderSize {
		return header, nil, &ErrShortEvent{Block: "event", Needed: eventHeaderSize, Received: int(header.EventSize)}
	}

	payloadSize := int(header.EventSize) - eventHeaderSize
	eventData := make([]byte, payloadSize)
	nRead, err := io.ReadFull(file, eventData)
	if err != nil {
		return header, nil, &ErrShortEvent{Block: "event payload", Needed: payloadSize, Received: nRead}
	}
	return header, eventData, nil
}

func ReadEvent(data []byte) (EventHeaderStruct, []byte, error) {
	var header EventHeaderStruct
	if len(data) < eventHeaderSize {
		return header, nil, &ErrShortEvent{Block: "event header", Needed: eventHeaderSize, Received: len(data)}
	}
	headerReader := bytes.NewReader(data[:eventHeaderSize])
	binary.Read(headerReader, binary.LittleEndian, &header)
	if header.EventMagic != EVENT_MAGIC_NUMBER {
		return header, nil, &ErrBadMagic{Magic: uint32(header.EventMagic)}
	}

	if int(header.EventSize) < eventHeaderSize || int(header.EventSize) > len(data) {
		return header, nil, &ErrShortEvent{Block: "event payload", Needed: int(header.EventSize), Received: len(data)}
	}
	eventData := data[eventHeaderSize:header.EventSize]
	return header, eventData, nil
}

// DecodeEvent reads the DCC blocks of an event payload.
func DecodeEvent(eventData []byte, header EventHeaderStruct) (EventType, error) {
	event := EventType{
		RunNumber: uint32(header.EventRunNb),
		EventID:   EventIdGetNbInRun(header.EventId),
		Timestamp: header.Timestamp(),
		RunType:   UnknownRunTypes(),
	}

	position := 0
	for position < len(eventData) {
		nRead, err := readEquipment(eventData, position, &event)
		if err != nil {
			event.Error = true
			return event, fmt.Errorf("event %d: %w", event.EventID, err)
		}
		position += nRead
	}
	return event, nil
}

func readEquipment(eventData []byte, position int, event *EventType) (int, error) {
	if len(eventData)-position < equipmentHeaderSize {
		return 0, &ErrShortEvent{Block: "equipment header", Needed: equipmentHeaderSize, Received: len(eventData) - position}
	}
	var eqHeader EquipmentHeaderStruct
	eqHeaderReader := bytes.NewReader(eventData[position : position+equipmentHeaderSize])
	binary.Read(eqHeaderReader, binary.LittleEndian, &eqHeader)

	nRead := int(eqHeader.EquipmentSize)
	if nRead < equipmentHeaderSize || position+nRead > len(eventData) {
		return 0, &ErrShortEvent{Block: "equipment", Needed: nRead, Received: len(eventData) - position}
	}
	payload := eventData[position+equipmentHeaderSize : position+nRead]

	if eqHeader.EquipmentType != EQUIPMENT_DCC {
		if configuration.Verbosity > 1 {
			message := fmt.Sprintf("Skipping equipment %d of type %d", eqHeader.EquipmentId, eqHeader.EquipmentType)
			logger.Info(message, "dateReader")
		}
		return nRead, nil
	}

	dcc := int(eqHeader.EquipmentId)
	if dcc < 1 || dcc > NDCC {
		logger.Error(fmt.Sprintf("event %d: DCC id %d out of range", event.EventID, dcc))
		return nRead, nil
	}

	if err := readDCC(payload, dcc, event); err != nil {
		return 0, err
	}
	return nRead, nil
}

func readDCC(payload []byte, dcc int, event *EventType) error {
	if len(payload) < dccHeaderSize {
		return &ErrShortEvent{Block: "DCC header", Needed: dccHeaderSize, Received: len(payload)}
	}
	var dccHeader DCCHeaderStruct
	binary.Read(bytes.NewReader(payload[:dccHeaderSize]), binary.LittleEndian, &dccHeader)

	needed := dccHeaderSize + int(dccHeader.NDigis)*digiSize + int(dccHeader.NPnDigis)*pnDigiSize
	if len(payload) < needed {
		return &ErrShortEvent{Block: fmt.Sprintf("DCC %d digis", dcc), Needed: needed, Received: len(payload)}
	}

	event.RunType[dcc-1] = dccHeader.RunType
	if configuration.Verbosity > 1 {
		message := fmt.Sprintf("DCC %d: run type %v, %d digis, %d PN digis", dcc, RunType(dccHeader.RunType), dccHeader.NDigis, dccHeader.NPnDigis)
		logger.Info(message, "dateReader")
	}

	position := dccHeaderSize
	for i := 0; i < int(dccHeader.NDigis); i++ {
		var digi Digi
		digi.ID = ChannelID(binary.LittleEndian.Uint32(payload[position:]))
		position += 4
		for j := 0; j < NSamples; j++ {
			digi.Samples[j] = MGPASample(binary.LittleEndian.Uint16(payload[position:]))
			position += 2
		}
		if digi.ID.Subdet() == SubdetEE {
			event.EEDigis = append(event.EEDigis, digi)
		} else {
			event.EBDigis = append(event.EBDigis, digi)
		}
	}
	for i := 0; i < int(dccHeader.NPnDigis); i++ {
		var digi PnDigi
		digi.ID = ChannelID(binary.LittleEndian.Uint32(payload[position:]))
		position += 4
		for j := 0; j < NPnSamples; j++ {
			digi.Samples[j] = FEMSample(binary.LittleEndian.Uint16(payload[position:]))
			position += 2
		}
		event.PnDigis = append(event.PnDigis, digi)
	}
	return nil
}
