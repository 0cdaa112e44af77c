package net

import (
	"LocalSketch/internal/state"
)

// MessageType tells the receiver how to read a Message.
type MessageType string

const (
	// TypeEdit carries one edit from a peer to the host.
	TypeEdit MessageType = "edit"
	// TypeSnapshot carries the host's full list of committed strokes.
	TypeSnapshot MessageType = "snapshot"

	// TypeJoin and TypeLeave are produced by the hub itself when a peer
	// connects or goes away. They never travel over the wire.
	TypeJoin  MessageType = "join"
	TypeLeave MessageType = "leave"
)

// Message is the JSON document exchanged between host and peers.
type Message struct {
	Type     MessageType    `json:"type"`
	Site     string         `json:"site,omitempty"`
	Revision int64          `json:"revision,omitempty"`
	Edit     *state.Edit    `json:"edit,omitempty"`
	Strokes  []state.Stroke `json:"strokes,omitempty"`
}

// EditMessage wraps an edit made at site.
func EditMessage(site string, e state.Edit) Message {
	return Message{Type: TypeEdit, Site: site, Edit: &e}
}

// SnapshotMessage wraps the committed strokes at a revision.
func SnapshotMessage(revision int64, strokes []state.Stroke) Message {
	return Message{Type: TypeSnapshot, Revision: revision, Strokes: strokes}
}
