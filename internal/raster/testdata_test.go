package raster

// testGrid is a 4x3 grid covering lng 3.0–5.0, lat 6.0–7.5.
const testGrid = `ncols        4
nrows        3
xllcorner    3.0
yllcorner    6.0
cellsize     0.5
NODATA_value -9999
0 0.5 1.5 3
7 12 50 -9999
85 10 15 0
`
