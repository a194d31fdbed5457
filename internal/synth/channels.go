package synth

import "vizrec/domain/viz"

var commonChannels = []viz.Channel{
	viz.ChannelX, viz.ChannelY, viz.ChannelColor, viz.ChannelOpacity,
	viz.ChannelTooltip, viz.ChannelDetail, viz.ChannelRow, viz.ChannelColumn,
}

// markChannels is the per-mark channel whitelist of the default family
var markChannels = map[viz.MarkType]map[viz.Channel]bool{
	viz.MarkBar:     with(viz.ChannelX2, viz.ChannelY2, viz.ChannelXOffset, viz.ChannelYOffset, viz.ChannelOrder, viz.ChannelSize),
	viz.MarkLine:    with(viz.ChannelXOffset, viz.ChannelYOffset, viz.ChannelOrder, viz.ChannelStrokeDash, viz.ChannelSize),
	viz.MarkArea:    with(viz.ChannelX2, viz.ChannelY2, viz.ChannelOrder),
	viz.MarkPoint:   with(viz.ChannelXOffset, viz.ChannelYOffset, viz.ChannelSize, viz.ChannelShape),
	viz.MarkCircle:  with(viz.ChannelXOffset, viz.ChannelYOffset, viz.ChannelSize),
	viz.MarkSquare:  with(viz.ChannelXOffset, viz.ChannelYOffset, viz.ChannelSize),
	viz.MarkRect:    with(viz.ChannelX2, viz.ChannelY2, viz.ChannelXOffset, viz.ChannelYOffset),
	viz.MarkTick:    with(viz.ChannelXOffset, viz.ChannelYOffset, viz.ChannelSize),
	viz.MarkRule:    with(viz.ChannelX2, viz.ChannelY2, viz.ChannelSize, viz.ChannelStrokeDash),
	viz.MarkText:    with(viz.ChannelXOffset, viz.ChannelYOffset, viz.ChannelText, viz.ChannelSize),
	viz.MarkTrail:   with(viz.ChannelOrder, viz.ChannelSize),
	viz.MarkBoxplot: with(viz.ChannelSize),
}

func with(extra ...viz.Channel) map[viz.Channel]bool {
	return channelSet(append(append([]viz.Channel(nil), commonChannels...), extra...)...)
}

// allowedChannels returns the whitelist for a default-family mark; unknown
// marks get the common channels only.
func allowedChannels(m viz.MarkType) map[viz.Channel]bool {
	if allowed, ok := markChannels[m]; ok {
		return allowed
	}
	return with()
}
