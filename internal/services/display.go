package services

import (
	"strings"

	"smallbasket/internal/domain/entities"
	"smallbasket/pkg/utils"
)

// ToDeliveryRequest builds the card shown for an order in listings.
func ToDeliveryRequest(o *entities.Order) *entities.DeliveryRequest {
	return &entities.DeliveryRequest{
		OrderID:          o.ID,
		Title:            strings.Join(o.Items, ", "),
		Pickup:           utils.JoinLocation(o.PickupLoc, o.PickupArea),
		Dropoff:          utils.JoinLocation(o.DropLoc, o.DropArea),
		Fee:              utils.FormatFee(o.Reward),
		Time:             utils.TimeDisplay(o.Deadline),
		Priority:         utils.IsPriority(o.Priority()),
		Details:          o.Notes,
		BestBefore:       o.BestBefore,
		Deadline:         o.Deadline,
		RewardPercentage: utils.RewardAmount(o.Reward),
		ItemPrice:        o.ItemPrice,
		PickupArea:       o.PickupArea,
		DropArea:         o.DropArea,
		Status:           o.Status,
		AcceptorEmail:    o.AcceptorEmail,
		AcceptorName:     o.AcceptorName,
		AcceptorPhone:    o.AcceptorPhone,
		RequesterEmail:   o.PosterEmail,
		RequesterName:    o.PosterName,
		RequesterPhone:   o.PosterPhone,
	}
}

// ToDeliveryRequests maps a listing, keeping order.
func ToDeliveryRequests(orders []*entities.Order) []*entities.DeliveryRequest {
	out := make([]*entities.DeliveryRequest, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToDeliveryRequest(o))
	}
	return out
}
