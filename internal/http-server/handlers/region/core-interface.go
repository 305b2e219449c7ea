package region

import "parcelsync/entity"

type Core interface {
	Regions() []entity.Region
}
