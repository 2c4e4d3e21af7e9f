package dqm

import (
	"bytes"
	"encoding/binary"
	"io"
)

type dccBlock struct {
	digis   []Digi
	pnDigis []PnDigi
	present bool
}

// EncodeEvent serializes an event in the raw format read by DecodeEvent.
// Digis are grouped by the DCC encoded in their channel id. A DCC block is
// written when the DCC has a known run type or carries digis.
func EncodeEvent(event *EventType, eventType EventTypeType) []byte {
	var blocks [NDCC]dccBlock
	for i, runType := range event.RunType {
		blocks[i].present = RunType(runType) != RUNTYPE_UNKNOWN
	}
	for _, digi := range append(append([]Digi(nil), event.EBDigis...), event.EEDigis...) {
		if dcc := digi.ID.Dcc(); dcc >= 1 && dcc <= NDCC {
			blocks[dcc-1].digis = append(blocks[dcc-1].digis, digi)
			blocks[dcc-1].present = true
		}
	}
	for _, digi := range event.PnDigis {
		if dcc := digi.ID.Dcc(); dcc >= 1 && dcc <= NDCC {
			blocks[dcc-1].pnDigis = append(blocks[dcc-1].pnDigis, digi)
			blocks[dcc-1].present = true
		}
	}

	var payload bytes.Buffer
	for i, block := range blocks {
		if !block.present {
			continue
		}
		size := equipmentHeaderSize + dccHeaderSize + len(block.digis)*digiSize + len(block.pnDigis)*pnDigiSize
		binary.Write(&payload, binary.LittleEndian, EquipmentHeaderStruct{
			EquipmentSize: EquipmentSizeType(size),
			EquipmentType: EQUIPMENT_DCC,
			EquipmentId:   EquipmentIdType(i + 1),
		})
		binary.Write(&payload, binary.LittleEndian, DCCHeaderStruct{
			RunType:  event.RunType[i],
			NDigis:   uint16(len(block.digis)),
			NPnDigis: uint16(len(block.pnDigis)),
		})
		for _, digi := range block.digis {
			binary.Write(&payload, binary.LittleEndian, uint32(digi.ID))
			binary.Write(&payload, binary.LittleEndian, digi.Samples)
		}
		for _, digi := range block.pnDigis {
			binary.Write(&payload, binary.LittleEndian, uint32(digi.ID))
			binary.Write(&payload, binary.LittleEndian, digi.Samples)
		}
	}

	header := EventHeaderStruct{
		EventSize:          EventSizeType(eventHeaderSize + payload.Len()),
		EventMagic:         EVENT_MAGIC_NUMBER,
		EventHeadSize:      EventHeadSizeType(eventHeaderSize),
		EventVersion:       EVENT_CURRENT_VERSION,
		EventType:          eventType,
		EventRunNb:         EventRunNbType(event.RunNumber),
		EventId:            EventIdType{event.EventID, 0},
		EventTimestampSec:  EventTimestampSecType(event.Timestamp / 1000000),
		EventTimestampUsec: EventTimestampUsecType(event.Timestamp % 1000000),
	}

	var out bytes.Buffer
	out.Grow(int(header.EventSize))
	binary.Write(&out, binary.LittleEndian, header)
	out.Write(payload.Bytes())
	return out.Bytes()
}

func WriteEvent(w io.Writer, event *EventType, eventType EventTypeType) error {
	_, err := w.Write(EncodeEvent(event, eventType))
	return err
}
